package segment

import (
	"bytes"
	"testing"

	"github.com/bugVanisher/damps/annexb"
	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

func auNal(nalType uint8) annexb.NalUnit {
	return annexb.NalUnit{NalUnitType: nalType, Rbsp: []byte{0x01}}
}

func singleSequenceUnits() []annexb.NalUnit {
	// Committing one complete sequence takes two AUD/SPS cycles plus a
	// final AUD: the trailing-trim policy always drops the last in-flight
	// sequence, so the second cycle exists only to trigger the first one's
	// flush.
	return []annexb.NalUnit{
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypePPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypePPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD),
	}
}

func TestSegmentSingleSequence(t *testing.T) {
	sequences := Segment(singleSequenceUnits())
	if len(sequences) != 1 {
		t.Fatalf("expected 1 sequence, got %d", len(sequences))
	}
	if len(sequences[0]) != 1 {
		t.Fatalf("expected 1 access unit, got %d", len(sequences[0]))
	}
	if len(sequences[0][0]) != 4 {
		t.Fatalf("expected 4 NAL units in the access unit, got %d", len(sequences[0][0]))
	}
}

func TestSegmentNoSpsProducesNoSequences(t *testing.T) {
	units := []annexb.NalUnit{auNal(annexb.TypeAUD), auNal(annexb.TypeSliceIDR), auNal(annexb.TypeAUD)}
	if sequences := Segment(units); len(sequences) != 0 {
		t.Fatalf("expected no sequences without an SPS, got %d", len(sequences))
	}
}

func TestGenerateSingleSequence(t *testing.T) {
	sequences := Segment(singleSequenceUnits())
	result := Generate(sequences, FrameRate30000_1001)

	if len(result.Entries) != 2 { // one sequence entry + terminal entry
		t.Fatalf("expected 2 GOP-index entries, got %d", len(result.Entries))
	}
	if result.Entries[0].PsPackHeaderPosition != 0 || result.Entries[0].Pts != 0 {
		t.Fatalf("unexpected first entry: %+v", result.Entries[0])
	}

	r := bitio.NewReader(result.Payload)
	packHeader, err := mpegps.ReadPackHeader(r)
	if err != nil {
		t.Fatalf("ReadPackHeader: %v", err)
	}
	if packHeader.ScrBase != 0 {
		t.Fatalf("expected SCR_base=0, got %d", packHeader.ScrBase)
	}

	pes, err := mpegps.ReadPesPacket(r)
	if err != nil {
		t.Fatalf("ReadPesPacket: %v", err)
	}
	if pes.Type1 == nil {
		t.Fatal("expected a Type1 PES packet")
	}
	if pes.Type1.PtsDtsFlags != mpegps.PtsDtsFlagsPts || pes.Type1.Pts != 0 {
		t.Fatalf("unexpected PES: %+v", pes.Type1)
	}

	tail := result.Payload[r.Tell():]
	if !bytes.Equal(tail, []byte{0x00, 0x00, 0x01, 0xB9}) {
		t.Fatalf("expected program-end marker immediately after the PES, got % x", tail)
	}
}

func TestGenerateSecondSequenceScrBase(t *testing.T) {
	// Two complete sequences require a third AUD/SPS cycle (plus a final
	// AUD) to flush the second one, for the same trailing-trim reason as
	// above.
	units := []annexb.NalUnit{
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD),
	}
	sequences := Segment(units)
	if len(sequences) != 2 {
		t.Fatalf("expected 2 sequences, got %d", len(sequences))
	}

	result := Generate(sequences, FrameRate30000_1001)
	if len(result.Entries) != 3 { // 2 sequences + terminal
		t.Fatalf("expected 3 GOP-index entries, got %d", len(result.Entries))
	}
	if result.Entries[0].Pts != 0 {
		t.Fatalf("expected first sequence SCR_base=0, got %d", result.Entries[0].Pts)
	}
	if result.Entries[1].Pts != 3003 {
		t.Fatalf("expected second sequence SCR_base=3003, got %d", result.Entries[1].Pts)
	}
}

func TestGeneratePtsMonotoneNondecreasing(t *testing.T) {
	units := []annexb.NalUnit{
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSliceNonIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSliceNonIDR),
		auNal(annexb.TypeAUD),
	}
	sequences := Segment(units)
	result := Generate(sequences, FrameRate30000_1001)

	// Walk the payload the way a reader/dumper would (dispatch on start
	// code + packet_id), rather than assuming a fixed AU-per-sequence
	// shape, and check every PES's PTS never decreases.
	r := bitio.NewReader(result.Payload)
	var lastPts uint64
	for r.Remaining() >= 4 {
		peek, err := r.PeekBytes(4)
		if err != nil {
			t.Fatalf("PeekBytes: %v", err)
		}
		switch {
		case bytes.Equal(peek, []byte{0x00, 0x00, 0x01, 0xBA}):
			if _, err := mpegps.ReadPackHeader(r); err != nil {
				t.Fatalf("ReadPackHeader: %v", err)
			}
		case bytes.Equal(peek, []byte{0x00, 0x00, 0x01, 0xB9}):
			return
		default:
			pes, err := mpegps.ReadPesPacket(r)
			if err != nil {
				t.Fatalf("ReadPesPacket: %v", err)
			}
			if pes.Type1 == nil {
				t.Fatalf("expected a Type1 PES packet")
			}
			if pes.Type1.Pts < lastPts {
				t.Fatalf("PTS went backward: %d < %d", pes.Type1.Pts, lastPts)
			}
			lastPts = pes.Type1.Pts
		}
	}
	t.Fatal("expected to reach the program-end marker")
}

func TestGenerateZeroLengthAccessUnitProducesNoPes(t *testing.T) {
	result := Generate([]Sequence{{AccessUnit{}}}, FrameRate30000_1001)
	r := bitio.NewReader(result.Payload)
	if _, err := mpegps.ReadPackHeader(r); err != nil {
		t.Fatalf("ReadPackHeader: %v", err)
	}
	tail := result.Payload[r.Tell():]
	if !bytes.Equal(tail, []byte{0x00, 0x00, 0x01, 0xB9}) {
		t.Fatalf("expected program-end marker directly after the pack header (no PES emitted), got % x", tail)
	}
}

func TestFragmentationBoundary(t *testing.T) {
	// A NAL unit serializing to exactly firstFragmentLimit bytes (prefix(3)
	// + header(1) + RBSP) produces exactly one PES packet.
	exact := annexb.NalUnit{NalUnitType: annexb.TypeSliceIDR, Rbsp: bytes.Repeat([]byte{0xAB}, firstFragmentLimit-4)}
	result := Generate([]Sequence{{AccessUnit{exact}}}, FrameRate30000_1001)
	r := bitio.NewReader(result.Payload)
	if _, err := mpegps.ReadPackHeader(r); err != nil {
		t.Fatalf("ReadPackHeader: %v", err)
	}
	if _, err := mpegps.ReadPesPacket(r); err != nil {
		t.Fatalf("ReadPesPacket: %v", err)
	}
	tail := r.Tell()
	if result.Payload[tail] != 0x00 || result.Payload[tail+1] != 0x00 || result.Payload[tail+2] != 0x01 || result.Payload[tail+3] != 0xB9 {
		t.Fatalf("expected exactly one PES packet before the program-end marker")
	}

	// One byte larger spills into a second PES packet with PTS_DTS_flags=0.
	overflow := annexb.NalUnit{NalUnitType: annexb.TypeSliceIDR, Rbsp: bytes.Repeat([]byte{0xAB}, firstFragmentLimit-3)}
	result2 := Generate([]Sequence{{AccessUnit{overflow}}}, FrameRate30000_1001)
	r2 := bitio.NewReader(result2.Payload)
	if _, err := mpegps.ReadPackHeader(r2); err != nil {
		t.Fatalf("ReadPackHeader: %v", err)
	}
	first, err := mpegps.ReadPesPacket(r2)
	if err != nil {
		t.Fatalf("ReadPesPacket (first): %v", err)
	}
	if first.Type1.PtsDtsFlags != mpegps.PtsDtsFlagsPts {
		t.Fatalf("expected first fragment to carry PTS_DTS_flags=2, got %d", first.Type1.PtsDtsFlags)
	}
	second, err := mpegps.ReadPesPacket(r2)
	if err != nil {
		t.Fatalf("ReadPesPacket (second): %v", err)
	}
	if second.Type1.PtsDtsFlags != mpegps.PtsDtsFlagsNone {
		t.Fatalf("expected second fragment to carry PTS_DTS_flags=0, got %d", second.Type1.PtsDtsFlags)
	}
}
