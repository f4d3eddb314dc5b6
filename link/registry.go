package link

import "devlink-go/errcode"

// Handler consumes a call payload and produces the reply plus a
// disposition telling the dispatcher how the call ends.
type Handler func(payload []byte) ([]byte, Disposition)

// Disposition is the handler's verdict on what happens after it runs.
type Disposition uint8

const (
	// Reply sends the returned payload back as a function-return frame.
	Reply Disposition = iota
	// Restarting means the handler has begun a device restart: send
	// nothing and treat the dispatch as terminal.
	Restarting
)

// Registry is the fixed name-to-handler table. Entries are added while
// the device boots and never change afterwards, so Lookup needs no
// locking from the dispatch loop.
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds name to h. Duplicate names and names the wire format
// cannot carry fail with errcode.InvalidParams.
func (r *Registry) Register(name string, h Handler) error {
	if len(name) == 0 || len(name) > MaxNameLen || h == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "link.Register", Msg: name}
	}
	if _, dup := r.handlers[name]; dup {
		return &errcode.E{C: errcode.InvalidParams, Op: "link.Register", Msg: "duplicate " + name}
	}
	r.handlers[name] = h
	return nil
}

// Lookup returns the handler bound to name, matching bytes exactly.
func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}
