package annexb

// IndexEntry is one (offset, length) hit produced by IndexNalUnits: offset is
// the position of the first zero byte of a NAL unit's start-code prefix,
// length extends to (but excludes) the next start code, or to end-of-stream
// for the last entry.
type IndexEntry struct {
	Offset int
	Length int
}

// IndexNalUnits scans buf for Annex-B start codes and returns one IndexEntry
// per NAL unit found. It folds 3-byte (00 00 01) and 4-byte (00 00 00 01)
// start codes into the same hit: an extra leading zero byte just widens the
// recorded offset by one, preserving the fact that the start code is "long".
// Runs that never produce a start code are silently ignored.
func IndexNalUnits(buf []byte) []IndexEntry {
	starts := scanStartCodes(buf)
	if len(starts) == 0 {
		return nil
	}
	entries := make([]IndexEntry, len(starts))
	for i, start := range starts {
		var end int
		if i+1 < len(starts) {
			end = starts[i+1]
		} else {
			end = len(buf)
		}
		entries[i] = IndexEntry{Offset: start, Length: end - start}
	}
	return entries
}

// scanStartCodes locates every occurrence of the 3-byte pattern 00 00 01 in
// buf, widening each hit one byte to the left when an extra zero byte
// immediately precedes it (the long start-code form).
func scanStartCodes(buf []byte) []int {
	var starts []int
	n := len(buf)
	for i := 0; i+2 < n; {
		if buf[i] == 0x00 && buf[i+1] == 0x00 && buf[i+2] == 0x01 {
			start := i
			if start > 0 && buf[start-1] == 0x00 {
				start--
			}
			starts = append(starts, start)
			i += 3
		} else {
			i++
		}
	}
	return starts
}
