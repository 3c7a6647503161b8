package mpegps

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
)

var systemHeaderStartCode = []byte{0x00, 0x00, 0x01, 0xBB}

// PStdInfo is one entry of a system header's P-STD buffer list.
type PStdInfo struct {
	StreamId         uint8
	BufferBoundScale uint8  // 1 bit
	BufferSizeBound  uint16 // 13 bits
}

// SystemHeader is the MPEG-2 Program Stream system_header record.
type SystemHeader struct {
	RateBound                 uint32 // 22 bits
	AudioBound                uint8  // 6 bits
	FixedFlag                 uint8
	CSPSFlag                  uint8
	SystemAudioLockFlag       uint8
	SystemVideoLockFlag       uint8
	VideoBound                uint8 // 5 bits
	PacketRateRestrictionFlag uint8
	PStdInfo                  []PStdInfo
}

// WriteSystemHeader serializes h, appending to w.
func WriteSystemHeader(w *bitio.Writer, h SystemHeader) {
	w.WriteBytes(systemHeaderStartCode)

	body := bitio.NewWriter()
	rateField := uint32(0x800001) | ((h.RateBound & 0x3fffff) << 1)
	body.WriteBits(uint64(rateField), 24)
	body.WriteBits(uint64(h.AudioBound&0x3f), 6)
	body.WriteBits(uint64(h.FixedFlag&0x01), 1)
	body.WriteBits(uint64(h.CSPSFlag&0x01), 1)
	body.WriteBits(uint64(h.SystemAudioLockFlag&0x01), 1)
	body.WriteBits(uint64(h.SystemVideoLockFlag&0x01), 1)
	body.WriteBits(1, 1) // marker_bit
	body.WriteBits(uint64(h.VideoBound&0x1f), 5)
	body.WriteBits(uint64(h.PacketRateRestrictionFlag&0x01), 1)
	body.WriteBits(0x7f, 7) // reserved_bits, all 1

	for _, p := range h.PStdInfo {
		body.WriteBits(uint64(p.StreamId), 8)
		temp := uint16(0xc000) | (uint16(p.BufferBoundScale&0x01) << 13) | (p.BufferSizeBound & 0x1fff)
		body.WriteBits(uint64(temp), 16)
	}

	body.Flush()
	headerBytes := body.Bytes()
	w.WriteBits(uint64(len(headerBytes)), 16)
	w.WriteBytes(headerBytes)
}

// ReadSystemHeader parses a system_header record at r's current position.
func ReadSystemHeader(r *bitio.Reader) (SystemHeader, error) {
	prefix, err := r.ReadBytes(4)
	if err != nil {
		return SystemHeader{}, err
	}
	if string(prefix) != string(systemHeaderStartCode) {
		return SystemHeader{}, errs.New(errs.KindInvalidStartCode, "mpegps: expected system_header start code")
	}

	headerLength, err := r.ReadBits(16)
	if err != nil {
		return SystemHeader{}, err
	}
	headerBytes, err := r.ReadBytes(int(headerLength))
	if err != nil {
		return SystemHeader{}, err
	}
	body := bitio.NewReader(headerBytes)

	rateField, err := body.ReadBits(24)
	if err != nil {
		return SystemHeader{}, err
	}
	h := SystemHeader{RateBound: uint32((rateField >> 1) & 0x3fffff)}

	audioBound, err := body.ReadBits(6)
	if err != nil {
		return SystemHeader{}, err
	}
	h.AudioBound = uint8(audioBound)

	fixedFlag, err := body.ReadBits(1)
	if err != nil {
		return SystemHeader{}, err
	}
	h.FixedFlag = uint8(fixedFlag)

	cspsFlag, err := body.ReadBits(1)
	if err != nil {
		return SystemHeader{}, err
	}
	h.CSPSFlag = uint8(cspsFlag)

	audioLock, err := body.ReadBits(1)
	if err != nil {
		return SystemHeader{}, err
	}
	h.SystemAudioLockFlag = uint8(audioLock)

	videoLock, err := body.ReadBits(1)
	if err != nil {
		return SystemHeader{}, err
	}
	h.SystemVideoLockFlag = uint8(videoLock)

	if _, err := body.ReadBits(1); err != nil { // marker_bit
		return SystemHeader{}, err
	}

	videoBound, err := body.ReadBits(5)
	if err != nil {
		return SystemHeader{}, err
	}
	h.VideoBound = uint8(videoBound)

	rateRestriction, err := body.ReadBits(1)
	if err != nil {
		return SystemHeader{}, err
	}
	h.PacketRateRestrictionFlag = uint8(rateRestriction)

	if _, err := body.ReadBits(7); err != nil { // reserved_bits
		return SystemHeader{}, err
	}

	for body.Remaining() > 0 {
		streamId, err := body.PeekByte()
		if err != nil {
			return SystemHeader{}, err
		}
		if streamId&0x80 != 0x80 {
			break
		}
		if _, err := body.ReadBits(8); err != nil {
			return SystemHeader{}, err
		}
		temp, err := body.ReadBits(16)
		if err != nil {
			return SystemHeader{}, err
		}
		h.PStdInfo = append(h.PStdInfo, PStdInfo{
			StreamId:         streamId,
			BufferBoundScale: uint8((temp >> 13) & 0x01),
			BufferSizeBound:  uint16(temp & 0x1fff),
		})
	}

	return h, nil
}
