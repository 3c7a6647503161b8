// Package damcontainer shapes a sequence of MPEG-2 PS records into the
// fixed container layout DAM-family players expect: a constant prologue
// (pack header, system header, program-stream map), a non-standard
// GOP-index PES packet, the payload, and a program-end marker.
package damcontainer

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

// GopIndexStreamId is the non-standard stream_id the GOP-index PES is
// tagged with.
const GopIndexStreamId = 0xBF

// GopIndexEntry maps one sequence's pack-header position to its size and
// starting PTS. Positions and sizes are always in bytes, never bits.
type GopIndexEntry struct {
	PsPackHeaderPosition uint64 // 40 bits
	AccessUnitSize       uint32 // 24 bits
	Pts                  uint32
}

const gopIndexEntrySize = 12

// GopIndexRecord is the DAM-specific GOP-index table, carried as the
// payload of a stream_id=0xBF PES packet.
type GopIndexRecord struct {
	SubStreamId uint8
	Version     uint8
	StreamId    uint8
	PageNumber  uint8 // 4 bits
	PageCount   uint8 // 4 bits
	Entries     []GopIndexEntry
}

// SerializeGopIndexRecord encodes r to its wire bytes. The wire gop_count
// field is len(Entries)-1, the form DAM players expect; Entries must be
// non-empty.
func SerializeGopIndexRecord(r GopIndexRecord) ([]byte, error) {
	if len(r.Entries) == 0 {
		return nil, errs.New(errs.KindInvalidField, "damcontainer: GOP index record must have at least one entry")
	}
	w := bitio.NewWriter()
	w.WriteBits(uint64(r.SubStreamId), 8)
	w.WriteBits(uint64(r.Version), 8)
	w.WriteBits(uint64(r.StreamId), 8)
	w.WriteBits(uint64(r.PageNumber&0x0f), 4)
	w.WriteBits(uint64(r.PageCount&0x0f), 4)
	w.WriteBits(uint64(len(r.Entries)-1), 16)
	for _, e := range r.Entries {
		w.WriteBits(e.PsPackHeaderPosition, 40)
		w.WriteBits(uint64(e.AccessUnitSize), 24)
		w.WriteBits(uint64(e.Pts), 32)
	}
	w.Flush()
	return w.Bytes(), nil
}

// ParseGopIndexRecord decodes a GOP-index record from its wire bytes. The
// wire gop_count field is read as field+1, mirroring the writer's -1.
func ParseGopIndexRecord(buf []byte) (GopIndexRecord, error) {
	r := bitio.NewReader(buf)
	subStreamId, err := r.ReadBits(8)
	if err != nil {
		return GopIndexRecord{}, err
	}
	version, err := r.ReadBits(8)
	if err != nil {
		return GopIndexRecord{}, err
	}
	streamId, err := r.ReadBits(8)
	if err != nil {
		return GopIndexRecord{}, err
	}
	pageNumber, err := r.ReadBits(4)
	if err != nil {
		return GopIndexRecord{}, err
	}
	pageCount, err := r.ReadBits(4)
	if err != nil {
		return GopIndexRecord{}, err
	}
	gopCountField, err := r.ReadBits(16)
	if err != nil {
		return GopIndexRecord{}, err
	}
	gopCount := int(gopCountField) + 1

	rec := GopIndexRecord{
		SubStreamId: uint8(subStreamId),
		Version:     uint8(version),
		StreamId:    uint8(streamId),
		PageNumber:  uint8(pageNumber),
		PageCount:   uint8(pageCount),
	}
	for i := 0; i < gopCount; i++ {
		position, err := r.ReadBits(40)
		if err != nil {
			return GopIndexRecord{}, err
		}
		size, err := r.ReadBits(24)
		if err != nil {
			return GopIndexRecord{}, err
		}
		pts, err := r.ReadBits(32)
		if err != nil {
			return GopIndexRecord{}, err
		}
		rec.Entries = append(rec.Entries, GopIndexEntry{
			PsPackHeaderPosition: position,
			AccessUnitSize:       uint32(size),
			Pts:                  uint32(pts),
		})
	}
	return rec, nil
}

// GopIndexPesSize returns the on-disk size of the PES packet wrapping rec:
// 6 bytes of PES header + 6 bytes of index header + 12 bytes per entry.
func GopIndexPesSize(entryCount int) int {
	return 6 + 6 + gopIndexEntrySize*entryCount
}

// WriteGopIndexPes wraps rec's serialized bytes in a Type-2 PES packet with
// stream_id=0xBF and appends it to w.
func WriteGopIndexPes(w *bitio.Writer, rec GopIndexRecord) error {
	body, err := SerializeGopIndexRecord(rec)
	if err != nil {
		return err
	}
	mpegps.WritePesPacket(w, mpegps.PesPacket{
		Type2: &mpegps.PesPacketType2{StreamId: GopIndexStreamId, Data: body},
	})
	return nil
}
