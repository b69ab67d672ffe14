// Package ui renders indexing job events on the terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Config configures a ConsoleSink.
type Config struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// NoColor disables lipgloss styling. Auto-detected from the
	// output when left false via NewConsoleSink.
	NoColor bool

	// Quiet suppresses progress lines, keeping side channel and
	// completion output.
	Quiet bool
}

// ConsoleSink implements the indexer event sink for CLI use, printing
// one line per event. Progress is throttled to full percent steps so
// large scans do not flood the terminal.
type ConsoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	quiet  bool

	run         string
	max         int64
	lastPercent int64
}

// NewConsoleSink creates a console sink, detecting color support from
// the output writer.
func NewConsoleSink(cfg Config) *ConsoleSink {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	noColor := cfg.NoColor
	if !noColor && !isTerminal(out) {
		noColor = true
	}

	styles := DefaultStyles()
	if noColor {
		styles = NoColorStyles()
	}

	return &ConsoleSink{out: out, styles: styles, quiet: cfg.Quiet}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ProgressText implements the event sink.
func (s *ConsoleSink) ProgressText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = text
	s.lastPercent = -1
}

// ProgressMax implements the event sink.
func (s *ConsoleSink) ProgressMax(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.max = n
	s.lastPercent = -1
}

// Progress implements the event sink.
func (s *ConsoleSink) Progress(n int64) {
	if s.quiet {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max <= 0 {
		return
	}
	percent := n * 100 / s.max
	if percent == s.lastPercent {
		return
	}
	s.lastPercent = percent

	label := s.styles.Label.Render(fmt.Sprintf("[%s]", s.run))
	bar := s.styles.Progress.Render(fmt.Sprintf("%3d%%", percent))
	_, _ = fmt.Fprintf(s.out, "%s %s\n", label, bar)
}

// VersionString implements the event sink.
func (s *ConsoleSink) VersionString(ecuID, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, "%s %s: %s\n", s.styles.Header.Render("version"), ecuID, version)
}

// Timezone implements the event sink.
func (s *ConsoleSink) Timezone(offsetSeconds int32, dst bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, "%s offset=%ds dst=%t\n", s.styles.Header.Render("timezone"), offsetSeconds, dst)
}

// UnregisterContext implements the event sink.
func (s *ConsoleSink) UnregisterContext(ecuID, appID, ctxID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, "%s %s %s %s\n", s.styles.Header.Render("unregister"), ecuID, appID, ctxID)
}

// GetLogInfo implements the event sink.
func (s *ConsoleSink) GetLogInfo(index int64) {
	// Log info responses are collected by the indexer; nothing to show.
}

// FinishIndex implements the event sink.
func (s *ConsoleSink) FinishIndex() {
	s.finish("index complete")
}

// FinishFilter implements the event sink.
func (s *ConsoleSink) FinishFilter() {
	s.finish("filter complete")
}

// FinishDefaultFilter implements the event sink.
func (s *ConsoleSink) FinishDefaultFilter() {
	s.finish("default filter complete")
}

func (s *ConsoleSink) finish(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, s.styles.Success.Render(text))
}
