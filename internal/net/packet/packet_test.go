package packet

import "testing"

func TestWriterReaderFieldRoundTrip(t *testing.T) {
	w := NewWriter(0x2a)
	w.WriteC(7)
	w.WriteH(60000)
	w.WriteD(-12345)
	w.WriteQ(1<<40 + 99)
	w.WriteS("Smith")

	r := NewReader(w.Bytes())
	if r.Opcode() != 0x2a {
		t.Fatalf("opcode = %d", r.Opcode())
	}
	if v := r.ReadC(); v != 7 {
		t.Fatalf("ReadC = %d", v)
	}
	if v := r.ReadH(); v != 60000 {
		t.Fatalf("ReadH = %d", v)
	}
	if v := r.ReadD(); v != -12345 {
		t.Fatalf("ReadD = %d", v)
	}
	if v := r.ReadQ(); v != 1<<40+99 {
		t.Fatalf("ReadQ = %d", v)
	}
	if v := r.ReadS(); v != "Smith" {
		t.Fatalf("ReadS = %q", v)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d", r.Remaining())
	}
}

func TestBig5StringRoundTrip(t *testing.T) {
	const name = "武器店" // weapon shop
	w := NewWriter(1)
	w.WriteS(name)

	// Big5 encodes each of these characters in two bytes.
	if w.Len() != 1+6+1 {
		t.Fatalf("Len = %d, want 8", w.Len())
	}
	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != name {
		t.Fatalf("ReadS = %q, want %q", got, name)
	}
}

func TestShortReadsYieldZeroValues(t *testing.T) {
	r := NewReader([]byte{0x01, 0xff}) // opcode + one stray byte
	if v := r.ReadH(); v != 0 {
		t.Fatalf("truncated ReadH = %d, want 0", v)
	}
	if v := r.ReadD(); v != 0 {
		t.Fatalf("truncated ReadD = %d, want 0", v)
	}
	// The single byte is still there for a C read.
	if v := r.ReadC(); v != 0xff {
		t.Fatalf("ReadC = %d, want 0xff", v)
	}
	if v := r.ReadC(); v != 0 {
		t.Fatalf("exhausted ReadC = %d, want 0", v)
	}
}

func TestReadStringWithoutTerminator(t *testing.T) {
	r := NewReader([]byte{0x01, 'a', 'b', 'c'})
	if got := r.ReadS(); got != "abc" {
		t.Fatalf("ReadS = %q, want rest of message", got)
	}
	if r.Remaining() != 0 {
		t.Fatalf("Remaining = %d", r.Remaining())
	}
}

func TestEmptyStringWrites(t *testing.T) {
	w := NewWriter(1)
	w.WriteS("")
	w.WriteC(5)
	r := NewReader(w.Bytes())
	if got := r.ReadS(); got != "" {
		t.Fatalf("ReadS = %q, want empty", got)
	}
	if v := r.ReadC(); v != 5 {
		t.Fatalf("ReadC after empty string = %d", v)
	}
}
