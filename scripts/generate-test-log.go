//go:build ignore

// Package main generates a synthetic DLT trace log for manual testing.
// Usage: go run scripts/generate-test-log.go -messages 100000 -output testdata/trace.dlt
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/dltkit/dltindex/internal/dlt"
)

var (
	numMessages = flag.Int("messages", 100000, "Number of messages to generate")
	output      = flag.String("output", "testdata/trace.dlt", "Output file")
	seed        = flag.Int64("seed", 42, "Random seed for reproducibility")
)

var apps = []struct {
	app, ctx string
}{
	{"NAVI", "ROUT"},
	{"MEDI", "PLAY"},
	{"CLIM", "CTRL"},
	{"DIAG", "MAIN"},
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var data []byte

	// Lead with a software version response so the side channel fires.
	data = dlt.AppendFrame(data, dlt.FrameSpec{
		EcuID: "ECU1", AppID: "DA1", CtxID: "DC1",
		Type: dlt.TypeControl, Subtype: dlt.ControlResponse,
		Payload: dlt.ControlPayload(dlt.ServiceIDGetSoftwareVersion, false,
			append(make([]byte, 5), []byte("dltindex synthetic 1.0")...)),
	})

	for i := 0; i < *numMessages; i++ {
		a := apps[rng.Intn(len(apps))]
		data = dlt.AppendFrame(data, dlt.FrameSpec{
			EcuID: "ECU1", AppID: a.app, CtxID: a.ctx,
			Type: dlt.TypeLog, Subtype: 4,
			Time:         int64(1700000000 + i/100),
			Microseconds: uint32(rng.Intn(1000000)),
			Payload:      fmt.Appendf(nil, "message %d from %s", i, a.app),
		})
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d messages (%d bytes) to %s\n", *numMessages+1, len(data), *output)
}
