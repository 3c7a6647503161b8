package damcontainer

import (
	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

// Codec selects which elementary-stream descriptor the prologue's
// program-stream map advertises.
type Codec int

const (
	CodecAvc Codec = iota
	CodecHevc
)

// ElementaryStreamId and ElementaryStreamType are the DAM prologue's fixed
// video stream identity.
const (
	ElementaryStreamId = 0xE0
	StreamTypeAvc      = 0x1B
	StreamTypeHevc     = 0x24
)

// ProgramEndMarker is the program_end_code packet.
var ProgramEndMarker = []byte{0x00, 0x00, 0x01, 0xB9}

func videoDescriptor(codec Codec) mpegps.Descriptor {
	switch codec {
	case CodecHevc:
		return mpegps.Descriptor{Hevc: &mpegps.HevcVideoDescriptor{}}
	default:
		return mpegps.Descriptor{Avc: &mpegps.AvcVideoDescriptor{
			ProfileIdc:         77,
			AvcCompatibleFlags: 1,
			LevelIdc:           40,
			AvcStillPresent:    1,
		}}
	}
}

func streamType(codec Codec) uint8 {
	if codec == CodecHevc {
		return StreamTypeHevc
	}
	return StreamTypeAvc
}

// BuildPrologue emits the fixed DAM container prologue: a zero-SCR pack
// header, a fixed system header, and a program-stream map advertising a
// single elementary stream for codec.
func BuildPrologue(codec Codec) []byte {
	w := bitio.NewWriter()

	mpegps.WritePackHeader(w, mpegps.PackHeader{
		ScrBase:            0,
		ScrExt:             0,
		ProgramMuxRate:     20000,
		PackStuffingLength: 0,
	})

	mpegps.WriteSystemHeader(w, mpegps.SystemHeader{
		RateBound:                 50000,
		SystemVideoLockFlag:       1,
		VideoBound:                1,
		PacketRateRestrictionFlag: 1,
		PStdInfo: []mpegps.PStdInfo{
			{StreamId: ElementaryStreamId, BufferBoundScale: 1, BufferSizeBound: 3051},
		},
	})

	mpegps.WriteProgramStreamMap(w, mpegps.ProgramStreamMap{
		CurrentNextIndicator: 1,
		Version:              1,
		ElementaryStreamMap: []mpegps.ElementaryStreamMapEntry{
			{
				StreamType:           streamType(codec),
				ElementaryStreamId:   ElementaryStreamId,
				ElementaryStreamInfo: []mpegps.Descriptor{videoDescriptor(codec)},
			},
		},
	})

	w.Flush()
	return w.Bytes()
}

// RebaseGopIndex adds offset to every entry's PsPackHeaderPosition, turning
// payload-relative positions produced by the segmenter into absolute
// on-disk positions.
func RebaseGopIndex(entries []GopIndexEntry, offset uint64) []GopIndexEntry {
	rebased := make([]GopIndexEntry, len(entries))
	for i, e := range entries {
		rebased[i] = e
		rebased[i].PsPackHeaderPosition = e.PsPackHeaderPosition + offset
	}
	return rebased
}

// AssembleWithRebase rebases payload-relative entries by the combined size
// of the prologue and the GOP-index PES (since the PES is spliced in
// between the two), then assembles the final file. This is the entry point
// the generator drives: the segmenter only ever knows positions relative to
// the start of the payload region.
func AssembleWithRebase(codec Codec, payloadRelativeEntries []GopIndexEntry, payload []byte) ([]byte, error) {
	prologue := BuildPrologue(codec)
	offset := uint64(len(prologue) + GopIndexPesSize(len(payloadRelativeEntries)))
	absolute := RebaseGopIndex(payloadRelativeEntries, offset)
	return assembleWithPrologue(prologue, absolute, payload)
}

// Assemble concatenates the final on-disk byte order: prologue, GOP-index
// PES, payload. entries must already be absolute (see
// RebaseGopIndex). payload is expected to already end with the
// program-end marker: the packetizer writes it as the last step of the
// payload it hands to the shaper, so the shaper only splices, never
// appends its own.
func Assemble(codec Codec, entries []GopIndexEntry, payload []byte) ([]byte, error) {
	return assembleWithPrologue(BuildPrologue(codec), entries, payload)
}

func assembleWithPrologue(prologue []byte, entries []GopIndexEntry, payload []byte) ([]byte, error) {
	rec := GopIndexRecord{
		SubStreamId: 0xFF,
		Version:     1,
		StreamId:    ElementaryStreamId,
		Entries:     entries,
	}
	indexWriter := bitio.NewWriter()
	if err := WriteGopIndexPes(indexWriter, rec); err != nil {
		return nil, err
	}
	indexWriter.Flush()
	gopIndexPes := indexWriter.Bytes()

	out := make([]byte, 0, len(prologue)+len(gopIndexPes)+len(payload))
	out = append(out, prologue...)
	out = append(out, gopIndexPes...)
	out = append(out, payload...)
	return out, nil
}
