package mpegps

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
)

// packStartCode is the 4-byte prefix of an MPEG-2 PS pack header.
var packStartCode = []byte{0x00, 0x00, 0x01, 0xBA}

// PackHeader is the MPEG-2 Program Stream pack_header record.
type PackHeader struct {
	ScrBase            uint64 // 33 bits
	ScrExt             uint16 // 9 bits
	ProgramMuxRate     uint32 // 22 bits
	PackStuffingLength uint8  // 3 bits
}

// WritePackHeader serializes h, appending to w.
func WritePackHeader(w *bitio.Writer, h PackHeader) {
	w.WriteBytes(packStartCode)

	// scr re-packs scr_base into [32:30 | 29:15 | 14:0] after a '01' prefix,
	// with marker bits at bits 42, 26 and 10 of the 48-bit field (constant
	// mask 0x440004000401), then 9-bit scr_ext and a trailing marker bit.
	scr := uint64(0x440004000401)
	scr |= (h.ScrBase & (0x07 << 30)) << 13
	scr |= (h.ScrBase & (0x7fff << 15)) << 12
	scr |= (h.ScrBase & 0x7fff) << 11
	scr |= uint64(h.ScrExt&0x01ff) << 1
	w.WriteBits(scr, 48)

	muxRate := uint32(0x000003)
	muxRate |= (h.ProgramMuxRate & 0x3fffff) << 2
	w.WriteBits(uint64(muxRate), 24)

	stuffing := uint8(0xf8) | (h.PackStuffingLength & 0x07)
	w.WriteBits(uint64(stuffing), 8)
	for i := uint8(0); i < h.PackStuffingLength; i++ {
		w.WriteBits(0xff, 8)
	}
}

// ReadPackHeader parses a pack_header record at r's current position.
func ReadPackHeader(r *bitio.Reader) (PackHeader, error) {
	prefix, err := r.ReadBytes(4)
	if err != nil {
		return PackHeader{}, err
	}
	if string(prefix) != string(packStartCode) {
		return PackHeader{}, errs.New(errs.KindInvalidStartCode, "mpegps: expected pack_header start code")
	}

	scr, err := r.ReadBits(48)
	if err != nil {
		return PackHeader{}, err
	}
	scrBase := (scr >> 13) & (0x07 << 30)
	scrBase |= (scr >> 12) & (0x7fff << 15)
	scrBase |= (scr >> 11) & 0x7fff
	scrExt := uint16((scr >> 1) & 0x01ff)

	muxRaw, err := r.ReadBits(24)
	if err != nil {
		return PackHeader{}, err
	}
	muxRate := uint32(muxRaw >> 2)

	stuffByte, err := r.ReadBits(8)
	if err != nil {
		return PackHeader{}, err
	}
	stuffing := uint8(stuffByte & 0x07)
	if _, err := r.ReadBytes(int(stuffing)); err != nil {
		return PackHeader{}, err
	}

	return PackHeader{
		ScrBase:            scrBase,
		ScrExt:             scrExt,
		ProgramMuxRate:     muxRate,
		PackStuffingLength: stuffing,
	}, nil
}
