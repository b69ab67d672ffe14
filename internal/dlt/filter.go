package dlt

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// Filter is one predicate over a Message. A filter only participates in
// matching when Enabled; each criterion is consulted only when its
// corresponding enable flag is set.
type Filter struct {
	// Name is a display label; it does not affect matching but is part
	// of the canonical form.
	Name string `yaml:"name" json:"name"`

	// Positive filters select messages, negative filters reject them.
	Negative bool `yaml:"negative" json:"negative"`

	Enabled bool `yaml:"enabled" json:"enabled"`

	EcuID string `yaml:"ecuid" json:"ecuid"`
	AppID string `yaml:"apid" json:"apid"`
	CtxID string `yaml:"ctid" json:"ctid"`

	MessageType    MessageType `yaml:"message_type" json:"message_type"`
	Subtype        int         `yaml:"subtype" json:"subtype"`
	PayloadPattern string      `yaml:"payload" json:"payload"`

	EnableEcuID       bool `yaml:"enable_ecuid" json:"enable_ecuid"`
	EnableAppID       bool `yaml:"enable_apid" json:"enable_apid"`
	EnableCtxID       bool `yaml:"enable_ctid" json:"enable_ctid"`
	EnableMessageType bool `yaml:"enable_message_type" json:"enable_message_type"`
	EnableSubtype     bool `yaml:"enable_subtype" json:"enable_subtype"`
	EnablePayload     bool `yaml:"enable_payload" json:"enable_payload"`
}

// Match reports whether every enabled criterion of the filter holds.
func (f *Filter) Match(msg *Message) bool {
	if f.EnableEcuID && msg.EcuID != f.EcuID {
		return false
	}
	if f.EnableAppID && msg.AppID != f.AppID {
		return false
	}
	if f.EnableCtxID && msg.CtxID != f.CtxID {
		return false
	}
	if f.EnableMessageType && msg.Type != f.MessageType {
		return false
	}
	if f.EnableSubtype && msg.Subtype != f.Subtype {
		return false
	}
	if f.EnablePayload {
		text := msg.DecodedText
		if text == "" {
			text = ToASCII(msg.Payload)
		}
		if !strings.Contains(text, f.PayloadPattern) {
			return false
		}
	}
	return true
}

// canonical returns the canonical serialized form of the filter used
// for fingerprinting.
func (f *Filter) canonical() string {
	return fmt.Sprintf("%s|%t|%t|%s|%s|%s|%d|%d|%s|%t%t%t%t%t%t",
		f.Name, f.Negative, f.Enabled,
		f.EcuID, f.AppID, f.CtxID,
		f.MessageType, f.Subtype, f.PayloadPattern,
		f.EnableEcuID, f.EnableAppID, f.EnableCtxID,
		f.EnableMessageType, f.EnableSubtype, f.EnablePayload)
}

// FilterList is an ordered collection of filters with the matching rules
// of the log viewer: a message matches when at least one enabled positive
// filter accepts it (or no positive filters exist) and no enabled
// negative filter accepts it.
type FilterList struct {
	Filters []*Filter `yaml:"filters" json:"filters"`
}

// Matches evaluates the filter list against a message.
func (l *FilterList) Matches(msg *Message) bool {
	havePositive := false
	matched := false

	for _, f := range l.Filters {
		if f == nil || !f.Enabled {
			continue
		}
		if f.Negative {
			if f.Match(msg) {
				return false
			}
			continue
		}
		havePositive = true
		if !matched && f.Match(msg) {
			matched = true
		}
	}

	if !havePositive {
		return true
	}
	return matched
}

// Fingerprint returns the 16-byte MD5 of the filter list's canonical form.
// Two lists with the same fingerprint are interchangeable for indexing.
func (l *FilterList) Fingerprint() [16]byte {
	var b strings.Builder
	for _, f := range l.Filters {
		if f == nil {
			continue
		}
		b.WriteString(f.canonical())
		b.WriteByte('\n')
	}
	return md5.Sum([]byte(b.String()))
}

// FingerprintHex returns the fingerprint as a lowercase hex string.
func (l *FilterList) FingerprintHex() string {
	sum := l.Fingerprint()
	return fmt.Sprintf("%x", sum)
}
