package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc is the callback signature for server-message handlers.
// Handlers run on the receive path: they are the only writers of world
// state and must return promptly — ordering of subsequent messages
// depends on it.
type HandlerFunc func(r *Reader)

// Registry maps server opcodes to handlers. Unknown opcodes are ignored:
// the server sends plenty this client does not consume.
type Registry struct {
	handlers map[byte]HandlerFunc
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]HandlerFunc),
		log:      log,
	}
}

// Register maps an opcode to a handler. Later registrations win, which
// tests use to stub individual messages.
func (reg *Registry) Register(opcode byte, fn HandlerFunc) {
	reg.handlers[opcode] = fn
}

// Dispatch routes one decoded message to its handler. A message with no
// handler is dropped silently; a handler panic is recovered and logged so
// a single bad message never kills the receive loop.
func (reg *Registry) Dispatch(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty message")
	}
	opcode := data[0]
	fn, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unhandled opcode", zap.Uint8("opcode", opcode), zap.Int("size", len(data)))
		return nil
	}
	return reg.safeCall(fn, NewReader(data), opcode)
}

func (reg *Registry) safeCall(fn HandlerFunc, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("handler panic recovered",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	fn(r)
	return nil
}
