package dlt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logMsg(ecu, app, ctx string) *Message {
	return &Message{EcuID: ecu, AppID: app, CtxID: ctx, Type: TypeLog, Subtype: 4}
}

func TestFilterList_EmptyMatchesEverything(t *testing.T) {
	var list FilterList
	assert.True(t, list.Matches(logMsg("ECU1", "APP1", "CTX1")))
}

func TestFilterList_PositiveFilter(t *testing.T) {
	list := FilterList{Filters: []*Filter{
		{Enabled: true, EnableAppID: true, AppID: "APP1"},
	}}

	assert.True(t, list.Matches(logMsg("ECU1", "APP1", "CTX1")))
	assert.False(t, list.Matches(logMsg("ECU1", "APP2", "CTX1")))
}

func TestFilterList_NegativeFilterWins(t *testing.T) {
	list := FilterList{Filters: []*Filter{
		{Enabled: true, EnableAppID: true, AppID: "APP1"},
		{Enabled: true, Negative: true, EnableCtxID: true, CtxID: "NOIS"},
	}}

	assert.True(t, list.Matches(logMsg("ECU1", "APP1", "CTX1")))
	assert.False(t, list.Matches(logMsg("ECU1", "APP1", "NOIS")))
}

func TestFilterList_DisabledFilterIgnored(t *testing.T) {
	list := FilterList{Filters: []*Filter{
		{Enabled: false, EnableAppID: true, AppID: "APP1"},
	}}

	// No enabled positive filter means everything matches
	assert.True(t, list.Matches(logMsg("ECU1", "OTHER", "CTX1")))
}

func TestFilterList_PayloadPattern(t *testing.T) {
	list := FilterList{Filters: []*Filter{
		{Enabled: true, EnablePayload: true, PayloadPattern: "error"},
	}}

	withPayload := logMsg("ECU1", "APP1", "CTX1")
	withPayload.Payload = []byte("an error occurred")
	without := logMsg("ECU1", "APP1", "CTX1")
	without.Payload = []byte("all fine")

	assert.True(t, list.Matches(withPayload))
	assert.False(t, list.Matches(without))
}

func TestFilterList_PayloadPatternPrefersDecodedText(t *testing.T) {
	list := FilterList{Filters: []*Filter{
		{Enabled: true, EnablePayload: true, PayloadPattern: "decoded"},
	}}

	msg := logMsg("ECU1", "APP1", "CTX1")
	msg.Payload = []byte("raw bytes")
	msg.DecodedText = "decoded text"

	assert.True(t, list.Matches(msg))
}

func TestFingerprint_Stable(t *testing.T) {
	a := FilterList{Filters: []*Filter{{Enabled: true, EnableAppID: true, AppID: "APP1"}}}
	b := FilterList{Filters: []*Filter{{Enabled: true, EnableAppID: true, AppID: "APP1"}}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	a := FilterList{Filters: []*Filter{{Enabled: true, EnableAppID: true, AppID: "APP1"}}}
	b := FilterList{Filters: []*Filter{{Enabled: true, EnableAppID: true, AppID: "APP2"}}}
	c := FilterList{Filters: []*Filter{{Enabled: false, EnableAppID: true, AppID: "APP1"}}}

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.FingerprintHex(), 32)
}

func TestFilterFile_RoundTrip(t *testing.T) {
	// Given: a filter list saved as YAML
	path := filepath.Join(t.TempDir(), "filters.yaml")
	list := &FilterList{Filters: []*Filter{
		{Name: "app", Enabled: true, EnableAppID: true, AppID: "APP1"},
		{Name: "noise", Enabled: true, Negative: true, EnableCtxID: true, CtxID: "NOIS"},
	}}
	require.NoError(t, SaveFilterList(path, list))

	// When: loading it back
	loaded, err := LoadFilterList(path)

	// Then: matching behaviour and fingerprint are identical
	require.NoError(t, err)
	assert.Equal(t, list.Fingerprint(), loaded.Fingerprint())
	assert.True(t, loaded.Matches(logMsg("ECU1", "APP1", "CTX1")))
	assert.False(t, loaded.Matches(logMsg("ECU1", "APP1", "NOIS")))
}

func TestLoadFilterList_Missing(t *testing.T) {
	_, err := LoadFilterList(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
