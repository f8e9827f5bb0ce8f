// Package journal persists the event stream for later inspection. Journals
// are downstream consumers of the adapter; the core itself never persists
// anything.
package journal

import (
	"io"

	"github.com/rustyeddy/mt5bridge/event"
)

// Journal is an event sink that can also be closed. Both implementations
// embed event.Nop and record only the callbacks they care about.
type Journal interface {
	event.Sink
	io.Closer
}
