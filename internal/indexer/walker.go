package indexer

import "github.com/dltkit/dltindex/internal/dlt"

// walk iterates the provider's message stream in global index order,
// invoking fn for every message the decoder accepts. Broken frames are
// skipped without advancing anything. Progress is reported every
// progressStride messages and the stop flag is honored after each one.
func (x *Indexer) walk(size int64, fn func(ix int64, msg *dlt.Message)) error {
	for ix := int64(0); ix < size; ix++ {
		msg, ok := x.file.GetMsg(ix)
		if ok {
			fn(ix, msg)
		}

		if ix%progressStride == 0 {
			x.sink.Progress(ix)
		}

		if x.stopFlag.Load() {
			return errStopped
		}
	}
	return nil
}
