package indexer

import "github.com/dltkit/dltindex/internal/dlt"

// ViewerPlugin is offered every message of the filter walk, once raw and
// once after decoding.
type ViewerPlugin interface {
	InitMsg(index int64, msg *dlt.Message)
	InitMsgDecoded(index int64, msg *dlt.Message)
}

// DecoderPlugin decodes a message in place, attaching decoded fields.
type DecoderPlugin interface {
	// DecodeMsg returns true when the plugin handled the message.
	DecodeMsg(msg *dlt.Message, silent bool) bool
}

// PluginManager supplies the registered plugins. The indexer snapshots
// both lists at job start; registrations during a running job take
// effect on the next job.
type PluginManager interface {
	ViewerPlugins() []ViewerPlugin
	DecoderPlugins() []DecoderPlugin
}

// decodeMsg runs the decoder plugin chain over a message.
func decodeMsg(plugins []DecoderPlugin, msg *dlt.Message, silent bool) {
	for _, p := range plugins {
		if p.DecodeMsg(msg, silent) {
			return
		}
	}
}
