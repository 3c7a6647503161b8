package mpegps

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
)

var pesStartCode = []byte{0x00, 0x00, 0x01}

// PTS/DTS flag values.
const (
	PtsDtsFlagsNone = 0
	PtsDtsFlagsPts  = 2
	PtsDtsFlagsBoth = 3
)

// isOpaqueStreamId reports whether stream_id dispatches to the Type-2
// (opaque payload) PES shape.
func isOpaqueStreamId(streamId uint8) bool {
	switch streamId {
	case 0xBC, 0xBF, 0xF0, 0xF1, 0xFF, 0xF2, 0xF8:
		return true
	default:
		return false
	}
}

// PesPacket is the closed sum type for the three PES shapes dispatched by
// stream_id. Exactly one of Type1/Type2/Type3 is non-nil.
type PesPacket struct {
	Type1 *PesPacketType1
	Type2 *PesPacketType2
	Type3 *PesPacketType3
}

// PesPacketType1 carries the full PES extension byte set: most elementary
// video/audio stream_ids (anything not routed to Type-2/Type-3).
type PesPacketType1 struct {
	StreamId               uint8
	ScramblingControl      uint8
	Priority               uint8
	DataAlignmentIndicator uint8
	Copyright              uint8
	OriginalOrCopy         uint8
	PtsDtsFlags            uint8
	EscrFlag               uint8
	EsRateFlag             uint8
	DsmTrickModeFlag       uint8
	AdditionalCopyInfoFlag uint8
	PesCrcFlag             uint8
	PesExtensionFlag       uint8
	Pts                    uint64 // 33-bit value, only when PtsDtsFlags != 0
	Dts                    uint64 // 33-bit value, only when PtsDtsFlags == 3
	Data                   []byte
}

// PesPacketType2 is an opaque payload PES: 0xBC, 0xBF, 0xF0, 0xF1, 0xFF,
// 0xF2, 0xF8 (program-stream map, GOP index, and others).
type PesPacketType2 struct {
	StreamId uint8
	Data     []byte
}

// PesPacketType3 is the padding stream (0xBE): a bare length, body is that
// many 0xFF bytes.
type PesPacketType3 struct {
	StreamId        uint8
	PesPacketLength uint16
}

func packPts33(flagsPrefix uint64, value uint64) uint64 {
	raw := flagsPrefix
	v := value
	raw |= (v & (0x07 << 30)) << 3
	raw |= (v & (0x7fff << 15)) << 2
	raw |= (v & 0x7fff) << 1
	return raw
}

func unpackPts33(raw uint64) uint64 {
	v := (raw >> 3) & (0x07 << 30)
	v |= (raw >> 2) & (0x7fff << 15)
	v |= (raw >> 1) & 0x7fff
	return v
}

// WritePesPacket serializes p, appending to w.
func WritePesPacket(w *bitio.Writer, p PesPacket) {
	switch {
	case p.Type1 != nil:
		writePesPacketType1(w, *p.Type1)
	case p.Type2 != nil:
		writePesPacketType2(w, *p.Type2)
	case p.Type3 != nil:
		writePesPacketType3(w, *p.Type3)
	}
}

func writePesPacketType1(w *bitio.Writer, p PesPacketType1) {
	w.WriteBytes(pesStartCode)
	w.WriteBits(uint64(p.StreamId), 8)

	body := bitio.NewWriter()
	body.WriteBits(0x02, 2) // '10' marker
	body.WriteBits(uint64(p.ScramblingControl&0x03), 2)
	body.WriteBits(uint64(p.Priority&0x01), 1)
	body.WriteBits(uint64(p.DataAlignmentIndicator&0x01), 1)
	body.WriteBits(uint64(p.Copyright&0x01), 1)
	body.WriteBits(uint64(p.OriginalOrCopy&0x01), 1)
	body.WriteBits(uint64(p.PtsDtsFlags&0x03), 2)
	body.WriteBits(uint64(p.EscrFlag&0x01), 1)
	body.WriteBits(uint64(p.EsRateFlag&0x01), 1)
	body.WriteBits(uint64(p.DsmTrickModeFlag&0x01), 1)
	body.WriteBits(uint64(p.AdditionalCopyInfoFlag&0x01), 1)
	body.WriteBits(uint64(p.PesCrcFlag&0x01), 1)
	body.WriteBits(uint64(p.PesExtensionFlag&0x01), 1)

	headerData := bitio.NewWriter()
	switch p.PtsDtsFlags {
	case PtsDtsFlagsPts:
		headerData.WriteBits(packPts33(0x2100010001, p.Pts), 40)
	case PtsDtsFlagsBoth:
		headerData.WriteBits(packPts33(0x3100010001, p.Pts), 40)
		headerData.WriteBits(packPts33(0x1100010001, p.Dts), 40)
	}
	headerData.Flush()
	headerBytes := headerData.Bytes()

	body.WriteBits(uint64(len(headerBytes)), 8)
	body.WriteBytes(headerBytes)
	body.WriteBytes(p.Data)
	body.Flush()
	bodyBytes := body.Bytes()

	w.WriteBits(uint64(len(bodyBytes)), 16)
	w.WriteBytes(bodyBytes)
}

func writePesPacketType2(w *bitio.Writer, p PesPacketType2) {
	w.WriteBytes(pesStartCode)
	w.WriteBits(uint64(p.StreamId), 8)
	w.WriteBits(uint64(len(p.Data)), 16)
	w.WriteBytes(p.Data)
}

func writePesPacketType3(w *bitio.Writer, p PesPacketType3) {
	w.WriteBytes(pesStartCode)
	w.WriteBits(uint64(p.StreamId), 8)
	w.WriteBits(uint64(p.PesPacketLength), 16)
	padding := make([]byte, p.PesPacketLength)
	for i := range padding {
		padding[i] = 0xff
	}
	w.WriteBytes(padding)
}

// ReadPesPacket dispatches on stream_id and parses the matching PES shape at
// r's current position.
func ReadPesPacket(r *bitio.Reader) (PesPacket, error) {
	prefix, err := r.ReadBytes(3)
	if err != nil {
		return PesPacket{}, err
	}
	if string(prefix) != string(pesStartCode) {
		return PesPacket{}, errs.New(errs.KindInvalidStartCode, "mpegps: expected PES start code")
	}
	streamIdRaw, err := r.ReadBits(8)
	if err != nil {
		return PesPacket{}, err
	}
	streamId := uint8(streamIdRaw)

	pesLength, err := r.ReadBits(16)
	if err != nil {
		return PesPacket{}, err
	}

	if streamId == 0xBE {
		if _, err := r.ReadBytes(int(pesLength)); err != nil {
			return PesPacket{}, err
		}
		return PesPacket{Type3: &PesPacketType3{StreamId: streamId, PesPacketLength: uint16(pesLength)}}, nil
	}

	if isOpaqueStreamId(streamId) {
		data, err := r.ReadBytes(int(pesLength))
		if err != nil {
			return PesPacket{}, err
		}
		return PesPacket{Type2: &PesPacketType2{StreamId: streamId, Data: data}}, nil
	}

	bodyBytes, err := r.ReadBytes(int(pesLength))
	if err != nil {
		return PesPacket{}, err
	}
	body := bitio.NewReader(bodyBytes)

	if _, err := body.ReadBits(2); err != nil { // '10' marker
		return PesPacket{}, err
	}
	p := PesPacketType1{StreamId: streamId}
	scrambling, err := body.ReadBits(2)
	if err != nil {
		return PesPacket{}, err
	}
	p.ScramblingControl = uint8(scrambling)
	priority, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.Priority = uint8(priority)
	alignment, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.DataAlignmentIndicator = uint8(alignment)
	copyright, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.Copyright = uint8(copyright)
	originalOrCopy, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.OriginalOrCopy = uint8(originalOrCopy)
	ptsDtsFlags, err := body.ReadBits(2)
	if err != nil {
		return PesPacket{}, err
	}
	p.PtsDtsFlags = uint8(ptsDtsFlags)
	escr, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.EscrFlag = uint8(escr)
	esRate, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.EsRateFlag = uint8(esRate)
	dsmTrick, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.DsmTrickModeFlag = uint8(dsmTrick)
	additionalCopy, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.AdditionalCopyInfoFlag = uint8(additionalCopy)
	pesCrc, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.PesCrcFlag = uint8(pesCrc)
	pesExtension, err := body.ReadBits(1)
	if err != nil {
		return PesPacket{}, err
	}
	p.PesExtensionFlag = uint8(pesExtension)

	headerDataLength, err := body.ReadBits(8)
	if err != nil {
		return PesPacket{}, err
	}
	headerDataBytes, err := body.ReadBytes(int(headerDataLength))
	if err != nil {
		return PesPacket{}, err
	}
	headerData := bitio.NewReader(headerDataBytes)

	switch p.PtsDtsFlags {
	case PtsDtsFlagsPts:
		raw, err := headerData.ReadBits(40)
		if err != nil {
			return PesPacket{}, err
		}
		p.Pts = unpackPts33(raw)
	case PtsDtsFlagsBoth:
		rawPts, err := headerData.ReadBits(40)
		if err != nil {
			return PesPacket{}, err
		}
		p.Pts = unpackPts33(rawPts)
		rawDts, err := headerData.ReadBits(40)
		if err != nil {
			return PesPacket{}, err
		}
		p.Dts = unpackPts33(rawDts)
	}

	p.Data, err = body.ReadBytes(body.Remaining())
	if err != nil {
		return PesPacket{}, err
	}

	return PesPacket{Type1: &p}, nil
}
