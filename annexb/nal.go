// Package annexb implements the H.264 Annex-B NAL-unit scanner and the
// EBSP<->RBSP emulation-prevention codec: locating NAL units in a byte
// stream and converting each to and from the fixed NAL-unit record the DAM
// packetizer consumes.
package annexb

import "github.com/bugVanisher/damps/common/errs"

// NAL unit types this module cares about; the rest pass through untouched.
const (
	TypeSliceNonIDR = 1
	TypeSliceIDR    = 5
	TypeSEI         = 6
	TypeSPS         = 7
	TypePPS         = 8
	TypeAUD         = 9
)

// NalUnit is one H.264 Annex-B NAL unit: its start-code width, the two
// header fields, and its already-unescaped RBSP payload. Instances are
// produced by Parse, held in an ordered slice, and consumed by the
// segmenter/packetizer; they are never mutated after construction.
type NalUnit struct {
	IsStartCodeLong bool
	NalRefIdc       uint8
	NalUnitType     uint8
	Rbsp            []byte
}

// IsPicture reports whether this NAL unit carries a coded picture (slice of
// a non-IDR or IDR picture), the trigger for incrementing picture_count.
func (n NalUnit) IsPicture() bool {
	return n.NalUnitType == TypeSliceNonIDR || n.NalUnitType == TypeSliceIDR
}

// Size returns the serialized size of this NAL unit in bytes.
func (n NalUnit) Size() int {
	prefixLen := 3
	if n.IsStartCodeLong {
		prefixLen = 4
	}
	return prefixLen + 1 + len(rbspToEbsp(n.Rbsp))
}

func newMalformed(msg string) error {
	return errs.New(errs.KindMalformedNalUnit, msg)
}
