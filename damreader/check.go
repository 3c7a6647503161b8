package damreader

import (
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/internal/bitio"
)

// Check bitmask bits, one per structural record kind the `check`
// subcommand reports on.
const (
	BitPackHeader uint8 = 1 << iota
	BitSystemHeader
	BitProgramStreamMap
	BitGopIndex
)

// Status strings the `check` CLI subcommand prints, derived from which bits
// in CheckResult.Bitmask are set.
const (
	StatusNotConvertable = "not_convertable"
	StatusConvertable    = "convertable"
	StatusCompatible     = "compatible"
)

// CheckResult is the outcome of Check: which structural records were
// present and the derived convertability status.
type CheckResult struct {
	Bitmask uint8
	Status  string
}

// Check walks buf once, swallowing any parse error it encounters, and
// reports which of {pack header, system header, PSM,
// GOP-index PES} it found before the error, or before reaching end of
// stream. A missing pack-header or system-header bit means "not
// convertable"; all four bits present means "compatible"; anything else
// (pack+system present, PSM and/or GOP-index missing) means "convertable".
func Check(buf []byte) CheckResult {
	r := bitio.NewReader(buf)
	var bitmask uint8

	_ = walk(r, func(rec record) error {
		switch rec.Kind {
		case recordPackHeader:
			bitmask |= BitPackHeader
		case recordSystemHeader:
			bitmask |= BitSystemHeader
		case recordProgramStreamMap:
			bitmask |= BitProgramStreamMap
		case recordPes:
			if rec.Pes.Type2 != nil && rec.Pes.Type2.StreamId == damcontainer.GopIndexStreamId {
				bitmask |= BitGopIndex
			}
		}
		return nil
	})

	return CheckResult{Bitmask: bitmask, Status: statusOf(bitmask)}
}

func statusOf(bitmask uint8) string {
	if bitmask&BitPackHeader == 0 || bitmask&BitSystemHeader == 0 {
		return StatusNotConvertable
	}
	const all = BitPackHeader | BitSystemHeader | BitProgramStreamMap | BitGopIndex
	if bitmask&all == all {
		return StatusCompatible
	}
	return StatusConvertable
}
