package damcontainer

import (
	"bytes"
	"testing"

	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

// TestProloguePackHeaderBytes pins the prologue pack header to its exact
// wire bytes: SCR zero, mux-rate 20000, no stuffing.
func TestProloguePackHeaderBytes(t *testing.T) {
	w := bitio.NewWriter()
	mpegps.WritePackHeader(w, mpegps.PackHeader{ScrBase: 0, ScrExt: 0, ProgramMuxRate: 20000, PackStuffingLength: 0})
	w.Flush()
	got := w.Bytes()
	// program_mux_rate=20000 packs as (20000<<2)|0x3 = 0x013883 in the
	// 24-bit mux-rate-plus-marker-bits field.
	want := []byte{0x00, 0x00, 0x01, 0xBA, 0x44, 0x00, 0x04, 0x00, 0x04, 0x01, 0x01, 0x38, 0x83, 0xF8}
	if !bytes.Equal(got, want) {
		t.Fatalf("pack header mismatch: got % x, want % x", got, want)
	}
}

func TestGopIndexRecordWireBytes(t *testing.T) {
	rec := GopIndexRecord{
		SubStreamId: 0xFF,
		Version:     1,
		StreamId:    0xE0,
		Entries: []GopIndexEntry{
			{PsPackHeaderPosition: 0, AccessUnitSize: 40000, Pts: 0},
			{PsPackHeaderPosition: 40000, AccessUnitSize: 12345, Pts: 3003},
		},
	}
	got, err := SerializeGopIndexRecord(rec)
	if err != nil {
		t.Fatalf("SerializeGopIndexRecord: %v", err)
	}
	want := []byte{
		0xFF, 0x01, 0xE0, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x9C, 0x40, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x9C, 0x40, 0x00, 0x30, 0x39, 0x00, 0x00, 0x0B, 0xBB,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("GOP index record mismatch: got % x, want % x", got, want)
	}

	back, err := ParseGopIndexRecord(got)
	if err != nil {
		t.Fatalf("ParseGopIndexRecord: %v", err)
	}
	if len(back.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(back.Entries))
	}
	if back.Entries[0] != rec.Entries[0] || back.Entries[1] != rec.Entries[1] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back.Entries, rec.Entries)
	}
}

func TestGopIndexPesSize(t *testing.T) {
	if got := GopIndexPesSize(2); got != 6+6+24 {
		t.Fatalf("GopIndexPesSize(2) = %d, want %d", got, 6+6+24)
	}
}

func TestRebaseGopIndex(t *testing.T) {
	entries := []GopIndexEntry{{PsPackHeaderPosition: 0}, {PsPackHeaderPosition: 100}}
	rebased := RebaseGopIndex(entries, 500)
	if rebased[0].PsPackHeaderPosition != 500 || rebased[1].PsPackHeaderPosition != 600 {
		t.Fatalf("rebase mismatch: %+v", rebased)
	}
	if entries[0].PsPackHeaderPosition != 0 {
		t.Fatal("RebaseGopIndex must not mutate its input")
	}
}

func TestAssembleOrderAndProgramEnd(t *testing.T) {
	// The packetizer writes the program-end marker as the last payload
	// bytes itself; the shaper only splices, it never appends one.
	payload := append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, ProgramEndMarker...)
	entries := []GopIndexEntry{{PsPackHeaderPosition: 0, AccessUnitSize: 4, Pts: 0}}
	out, err := AssembleWithRebase(CodecAvc, entries, payload)
	if err != nil {
		t.Fatalf("AssembleWithRebase: %v", err)
	}
	if !bytes.HasSuffix(out, payload) {
		t.Fatalf("expected payload (ending in the program-end marker) to be the suffix")
	}
	prologue := BuildPrologue(CodecAvc)
	if !bytes.HasPrefix(out, prologue) {
		t.Fatal("expected output to start with the prologue")
	}
}
