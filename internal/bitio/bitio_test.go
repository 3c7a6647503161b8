package bitio

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0x1FF, 9)
	w.Flush()
	w.WriteByte(0xAB)

	r := NewReader(w.Bytes())
	v1, err := r.ReadBits(3)
	if err != nil || v1 != 0b101 {
		t.Fatalf("ReadBits(3) = %d, %v", v1, err)
	}
	v2, err := r.ReadBits(9)
	if err != nil || v2 != 0x1FF {
		t.Fatalf("ReadBits(9) = %d, %v", v2, err)
	}
	r.AlignToByte()
	b, err := r.ReadBytes(1)
	if err != nil || b[0] != 0xAB {
		t.Fatalf("ReadBytes = %v, %v", b, err)
	}
}

func TestReaderSeekTell(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if _, err := r.ReadBytes(2); err != nil {
		t.Fatal(err)
	}
	if got := r.Tell(); got != 2 {
		t.Fatalf("Tell() = %d, want 2", got)
	}
	if err := r.Seek(4); err != nil {
		t.Fatal(err)
	}
	b, err := r.ReadBytes(1)
	if err != nil || b[0] != 5 {
		t.Fatalf("ReadBytes after seek = %v, %v", b, err)
	}
}

func TestReaderUnexpectedEof(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadBits(16); err == nil {
		t.Fatal("expected error reading past end")
	}
}

func TestWriterCheckAligned(t *testing.T) {
	w := NewWriter()
	w.WriteBits(1, 3)
	if err := w.CheckAligned(); err == nil {
		t.Fatal("expected alignment error")
	}
	w.Flush()
	if err := w.CheckAligned(); err != nil {
		t.Fatalf("unexpected alignment error after flush: %v", err)
	}
}
