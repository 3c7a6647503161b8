package annexb

import (
	"bytes"
	"testing"
)

func TestParseSerializeRoundTrip(t *testing.T) {
	cases := []NalUnit{
		{IsStartCodeLong: false, NalRefIdc: 3, NalUnitType: TypeSPS, Rbsp: []byte{0x64, 0x00, 0x0A, 0xAC}},
		{IsStartCodeLong: true, NalRefIdc: 0, NalUnitType: TypeAUD, Rbsp: []byte{0xF0}},
		{IsStartCodeLong: false, NalRefIdc: 1, NalUnitType: TypeSliceIDR, Rbsp: []byte{0x00, 0x00, 0x00, 0x01, 0x02}},
	}
	for _, want := range cases {
		buf := Serialize(want)
		got, err := Parse(buf)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if got.IsStartCodeLong != want.IsStartCodeLong || got.NalRefIdc != want.NalRefIdc ||
			got.NalUnitType != want.NalUnitType || !bytes.Equal(got.Rbsp, want.Rbsp) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestEbspRbspRoundTrip(t *testing.T) {
	rbsp := []byte{0x00, 0x00, 0x00, 0x00, 0x03, 0x00, 0xCA}
	ebsp := rbspToEbsp(rbsp)
	back := ebspToRbsp(ebsp)
	if !bytes.Equal(back, rbsp) {
		t.Fatalf("round trip mismatch: got %x, want %x", back, rbsp)
	}
}

func TestTrailingEscapeNotApplied(t *testing.T) {
	rbsp := []byte{0x01, 0x00, 0x00, 0x03}
	ebsp := rbspToEbsp(rbsp)
	if !bytes.Equal(ebsp, rbsp) {
		t.Fatalf("trailing 00 00 03 should not be escaped: got %x", ebsp)
	}
}

func TestForbiddenZeroBit(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x01, 0x80, 0x01}
	if _, err := Parse(buf); err == nil {
		t.Fatal("expected error for forbidden_zero_bit set")
	}
}

func TestIndexNalUnits(t *testing.T) {
	sps := Serialize(NalUnit{IsStartCodeLong: true, NalUnitType: TypeSPS, Rbsp: []byte{0x01, 0x02}})
	pps := Serialize(NalUnit{IsStartCodeLong: false, NalUnitType: TypePPS, Rbsp: []byte{0x03}})
	idr := Serialize(NalUnit{IsStartCodeLong: false, NalUnitType: TypeSliceIDR, Rbsp: []byte{0x04, 0x05}})

	buf := append(append(append([]byte{}, sps...), pps...), idr...)
	entries := IndexNalUnits(buf)
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Offset != 0 || entries[0].Length != len(sps) {
		t.Fatalf("sps entry mismatch: %+v", entries[0])
	}
	if entries[2].Length != len(idr) {
		t.Fatalf("idr entry length mismatch: %+v", entries[2])
	}
	for _, e := range entries {
		nal, err := Parse(buf[e.Offset : e.Offset+e.Length])
		if err != nil {
			t.Fatalf("Parse indexed NAL: %v", err)
		}
		_ = nal
	}
}
