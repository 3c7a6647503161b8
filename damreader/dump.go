package damreader

import "github.com/bugVanisher/damps/damcontainer"

// Dump locates the stored GOP-index PES in buf and returns its decoded
// record, for the `dump` CLI subcommand.
func Dump(buf []byte) (damcontainer.GopIndexRecord, error) {
	return FindGopIndex(buf)
}

// PtsMsec converts a 90 kHz PTS tick count to milliseconds, the derived
// pts_msec column `dump` and `analyze` print per entry.
func PtsMsec(pts uint32) uint32 {
	return pts / 90
}
