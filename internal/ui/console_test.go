package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSink(quiet bool) (*ConsoleSink, *strings.Builder) {
	var buf strings.Builder
	return NewConsoleSink(Config{Output: &buf, NoColor: true, Quiet: quiet}), &buf
}

func TestConsoleSink_ProgressThrottling(t *testing.T) {
	// Given: a phase of 1000 units
	sink, buf := newTestSink(false)
	sink.ProgressText("1/2")
	sink.ProgressMax(1000)

	// When: reporting two positions within the same percent
	sink.Progress(100)
	sink.Progress(105)
	sink.Progress(200)

	// Then: only distinct percent steps are printed
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "%"))
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "10%")
	assert.Contains(t, out, "20%")
}

func TestConsoleSink_Quiet(t *testing.T) {
	sink, buf := newTestSink(true)
	sink.ProgressText("1/1")
	sink.ProgressMax(100)
	sink.Progress(50)

	assert.Empty(t, buf.String())
}

func TestConsoleSink_SideChannels(t *testing.T) {
	sink, buf := newTestSink(false)

	sink.VersionString("ECU1", "1.2.3")
	sink.Timezone(3600, true)
	sink.UnregisterContext("ECU1", "APP1", "CTX1")

	out := buf.String()
	assert.Contains(t, out, "version ECU1: 1.2.3")
	assert.Contains(t, out, "offset=3600s dst=true")
	assert.Contains(t, out, "unregister ECU1 APP1 CTX1")
}

func TestConsoleSink_FinishEvents(t *testing.T) {
	sink, buf := newTestSink(false)

	sink.FinishIndex()
	sink.FinishFilter()
	sink.FinishDefaultFilter()

	out := buf.String()
	assert.Contains(t, out, "index complete")
	assert.Contains(t, out, "filter complete")
	assert.Contains(t, out, "default filter complete")
}

func TestConsoleSink_ZeroMax(t *testing.T) {
	// Progress with no announced max must not divide by zero
	sink, buf := newTestSink(false)
	sink.Progress(10)
	assert.Empty(t, buf.String())
}
