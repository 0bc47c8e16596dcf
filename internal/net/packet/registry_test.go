package packet

import (
	"testing"

	"go.uber.org/zap"
)

func TestDispatchRoutesByOpcode(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got uint16
	reg.Register(0x10, func(r *Reader) { got = r.ReadH() })

	w := NewWriter(0x10)
	w.WriteH(1234)
	if err := reg.Dispatch(w.Bytes()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if got != 1234 {
		t.Fatalf("handler saw %d", got)
	}
}

func TestDispatchDropsUnknownOpcode(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch([]byte{0x77, 1, 2}); err != nil {
		t.Fatalf("unknown opcode must not error: %v", err)
	}
}

func TestDispatchEmptyMessage(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	if err := reg.Dispatch(nil); err == nil {
		t.Fatalf("empty message must error")
	}
}

func TestDispatchRecoversHandlerPanic(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	reg.Register(0x10, func(r *Reader) { panic("boom") })
	if err := reg.Dispatch([]byte{0x10}); err == nil {
		t.Fatalf("panicking handler must surface an error")
	}
}

func TestLaterRegistrationWins(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var calls []string
	reg.Register(0x10, func(r *Reader) { calls = append(calls, "first") })
	reg.Register(0x10, func(r *Reader) { calls = append(calls, "second") })
	reg.Dispatch([]byte{0x10})
	if len(calls) != 1 || calls[0] != "second" {
		t.Fatalf("calls = %v", calls)
	}
}
