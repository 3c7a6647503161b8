package annexb

var (
	startCode3     = []byte{0x00, 0x00, 0x01}
	startCode4     = []byte{0x00, 0x00, 0x00, 0x01}
	ebspEscapeCode = []byte{0x00, 0x00, 0x03}
)

// Parse decodes one complete Annex-B NAL unit (prefix + header + EBSP) from
// buf. buf must contain exactly one NAL unit, as produced by slicing the
// source at an IndexEntry's (Offset, Length).
func Parse(buf []byte) (NalUnit, error) {
	if len(buf) < 4 {
		return NalUnit{}, newMalformed("buffer shorter than minimal start code + header")
	}

	zeroCount := 0
	pos := 0
	for pos < len(buf) && buf[pos] == 0x00 && zeroCount < 4 {
		zeroCount++
		pos++
	}
	if pos >= len(buf) || buf[pos] != 0x01 {
		return NalUnit{}, newMalformed("missing 0x01 start code byte")
	}
	isStartCodeLong := zeroCount >= 3
	pos++ // consume the 0x01

	if pos >= len(buf) {
		return NalUnit{}, newMalformed("truncated NAL unit header")
	}
	header := buf[pos]
	pos++
	if header&0x80 != 0 {
		return NalUnit{}, newMalformed("forbidden_zero_bit set")
	}
	nalRefIdc := (header >> 5) & 0x03
	nalUnitType := header & 0x1f

	ebsp := buf[pos:]
	rbsp := ebspToRbsp(ebsp)

	return NalUnit{
		IsStartCodeLong: isStartCodeLong,
		NalRefIdc:       nalRefIdc,
		NalUnitType:     nalUnitType,
		Rbsp:            rbsp,
	}, nil
}

// Serialize encodes a NalUnit back to its Annex-B byte representation:
// start-code prefix, one header byte, then the RBSP escaped to EBSP.
func Serialize(n NalUnit) []byte {
	prefix := startCode3
	if n.IsStartCodeLong {
		prefix = startCode4
	}
	header := byte((n.NalRefIdc&0x03)<<5) | (n.NalUnitType & 0x1f)
	ebsp := rbspToEbsp(n.Rbsp)

	out := make([]byte, 0, len(prefix)+1+len(ebsp))
	out = append(out, prefix...)
	out = append(out, header)
	out = append(out, ebsp...)
	return out
}

// ebspToRbsp removes emulation-prevention bytes: every occurrence of
// 00 00 03 XX with XX <= 0x03 collapses to 00 00 XX. A 00 00 03 run whose
// fourth byte is > 0x03 is left untouched (it is not an emulation-prevention
// escape) and the scan resumes after it without re-matching the bytes just
// consumed. A trailing 00 00 03 with no fourth byte is likewise left as is,
// the counterpart of rbspToEbsp's unescaped trailing 00 00 03.
func ebspToRbsp(ebsp []byte) []byte {
	rbsp := make([]byte, 0, len(ebsp))
	i := 0
	for i < len(ebsp) {
		if i+3 < len(ebsp) && ebsp[i] == 0x00 && ebsp[i+1] == 0x00 && ebsp[i+2] == 0x03 && ebsp[i+3] <= 0x03 {
			rbsp = append(rbsp, 0x00, 0x00, ebsp[i+3])
			i += 4
			continue
		}
		rbsp = append(rbsp, ebsp[i])
		i++
	}
	return rbsp
}

// rbspToEbsp inserts emulation-prevention bytes: every occurrence of
// 00 00 XX with XX <= 0x03 becomes 00 00 03 XX. The one documented
// exception: a trailing 00 00 03 at the very end of rbsp is NOT escaped,
// preserving round-trip symmetry with the reader's own lookahead for a
// trailing 00 00 03.
func rbspToEbsp(rbsp []byte) []byte {
	ebsp := make([]byte, 0, len(rbsp)+len(rbsp)/2+4)
	i := 0
	for i < len(rbsp) {
		if i+2 < len(rbsp) && rbsp[i] == 0x00 && rbsp[i+1] == 0x00 && rbsp[i+2] <= 0x03 {
			if i+2 == len(rbsp)-1 && rbsp[i+2] == 0x03 {
				// Trailing 00 00 03 at the absolute end: leave unescaped.
				ebsp = append(ebsp, rbsp[i:]...)
				i = len(rbsp)
				continue
			}
			ebsp = append(ebsp, 0x00, 0x00, 0x03, rbsp[i+2])
			i += 3
			continue
		}
		ebsp = append(ebsp, rbsp[i])
		i++
	}
	return ebsp
}
