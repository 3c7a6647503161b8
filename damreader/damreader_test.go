package damreader

import (
	"testing"

	"github.com/bugVanisher/damps/annexb"
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/segment"
)

func auNal(nalType uint8) annexb.NalUnit {
	return annexb.NalUnit{NalUnitType: nalType, Rbsp: []byte{0x01, 0x02}}
}

// oneSequenceUnits carries two AUD/SPS cycles plus a trailing AUD: the
// segmenter's trailing-trim policy drops the in-flight second cycle, so
// exactly one sequence (one access unit, one picture) is committed.
func oneSequenceUnits() []annexb.NalUnit {
	return []annexb.NalUnit{
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypePPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD), auNal(annexb.TypeSPS), auNal(annexb.TypePPS), auNal(annexb.TypeSliceIDR),
		auNal(annexb.TypeAUD),
	}
}

func generateTestFile(t *testing.T) []byte {
	t.Helper()
	out, err := segment.GenerateFile(oneSequenceUnits(), damcontainer.CodecAvc, segment.FrameRate30000_1001)
	if err != nil {
		t.Fatalf("GenerateFile: %v", err)
	}
	return out
}

func TestDumpMatchesGeneratedGopIndex(t *testing.T) {
	buf := generateTestFile(t)

	rec, err := Dump(buf)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(rec.Entries) != 2 { // one committed sequence + the terminal entry
		t.Fatalf("expected 2 GOP-index entries, got %d", len(rec.Entries))
	}
	if rec.Entries[0].Pts != 0 {
		t.Fatalf("expected first entry pts=0, got %d", rec.Entries[0].Pts)
	}
	if rec.Entries[1].Pts <= rec.Entries[0].Pts {
		t.Fatalf("expected terminal entry pts to exceed the first, got %d then %d", rec.Entries[0].Pts, rec.Entries[1].Pts)
	}
}

func TestDumpOffsetsMatchActualPackHeaderPositions(t *testing.T) {
	// Invariant 6: the set of offsets in the emitted GOP index equals
	// the set of actual byte offsets of pack headers scanned in the output.
	buf := generateTestFile(t)

	dumped, err := Dump(buf)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	analyzed, err := Analyze(buf, 0xE0)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(dumped.Entries) != len(analyzed.Entries) {
		t.Fatalf("entry count mismatch: dump=%d analyze=%d", len(dumped.Entries), len(analyzed.Entries))
	}
	for i := range dumped.Entries {
		if dumped.Entries[i].PsPackHeaderPosition != analyzed.Entries[i].PsPackHeaderPosition {
			t.Fatalf("entry %d position mismatch: dump=%d analyze=%d",
				i, dumped.Entries[i].PsPackHeaderPosition, analyzed.Entries[i].PsPackHeaderPosition)
		}
	}
}

func TestCheckOnGeneratedFileIsCompatible(t *testing.T) {
	buf := generateTestFile(t)

	result := Check(buf)
	want := BitPackHeader | BitSystemHeader | BitProgramStreamMap | BitGopIndex
	if result.Bitmask != want {
		t.Fatalf("expected bitmask %#x, got %#x", want, result.Bitmask)
	}
	if result.Status != StatusCompatible {
		t.Fatalf("expected status %q, got %q", StatusCompatible, result.Status)
	}
}

func TestCheckOnTruncatedFileIsNotConvertable(t *testing.T) {
	buf := generateTestFile(t)
	// Truncate before even the pack header completes.
	result := Check(buf[:2])
	if result.Status != StatusNotConvertable {
		t.Fatalf("expected status %q, got %q", StatusNotConvertable, result.Status)
	}
}

func TestFindGopIndexNotFoundOnPayloadOnly(t *testing.T) {
	sequences := segment.Segment(oneSequenceUnits())
	result := segment.Generate(sequences, segment.FrameRate30000_1001)

	_, err := FindGopIndex(result.Payload)
	if err == nil {
		t.Fatal("expected NotFound error scanning a payload with no GOP-index PES")
	}
}
