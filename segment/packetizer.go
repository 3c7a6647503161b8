package segment

import (
	"math/big"

	"github.com/bugVanisher/damps/annexb"
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

// videoStreamId is the elementary stream_id every access unit's PES
// packets carry; the container advertises this single elementary stream.
const videoStreamId = 0xE0

// firstFragmentLimit and subsequentFragmentLimit are the PES body caps
// after accounting for the extension-byte overhead of a PTS-bearing first
// fragment (PTS_DTS_flags=2, 5 extra header bytes) versus a flagless
// continuation fragment.
const (
	firstFragmentLimit      = 65535 - 8
	subsequentFragmentLimit = 65535 - 3
)

// Result is the output of Generate: the payload byte stream (starting at
// its first pack header, relative to nothing else) and the GOP-index
// entries describing it, with PsPackHeaderPosition relative to the start of
// this payload — damcontainer.AssembleWithRebase turns those into absolute
// file offsets once the prologue and GOP-index PES sizes are known.
type Result struct {
	Payload []byte
	Entries []damcontainer.GopIndexEntry
}

// Generate packetizes sequences into a PS payload: one pack header per
// sequence, each access unit fragmented into Type-1 PES packets carrying
// stream_id=0xE0, followed by a program-end marker and a terminal
// zero-size GOP-index entry.
func Generate(sequences []Sequence, frameRate *big.Rat) Result {
	w := bitio.NewWriter()
	clock := NewClock(frameRate)
	var entries []damcontainer.GopIndexEntry

	for _, sequence := range sequences {
		seqStart := w.Len()
		scrBase := clock.Base()
		scrExt := clock.Ext()

		mpegps.WritePackHeader(w, mpegps.PackHeader{
			ScrBase:        scrBase,
			ScrExt:         scrExt,
			ProgramMuxRate: 20000,
		})

		for _, au := range sequence {
			writeAccessUnit(w, clock, au)
		}

		entries = append(entries, damcontainer.GopIndexEntry{
			PsPackHeaderPosition: uint64(seqStart),
			AccessUnitSize:       uint32(w.Len() - seqStart),
			Pts:                  uint32(scrBase),
		})
	}

	w.WriteBytes(damcontainer.ProgramEndMarker)

	terminalOffset := uint64(w.Len())
	entries = append(entries, damcontainer.GopIndexEntry{
		PsPackHeaderPosition: terminalOffset,
		AccessUnitSize:       0,
		Pts:                  uint32(clock.Base()),
	})

	return Result{Payload: w.Bytes(), Entries: entries}
}

// writeAccessUnit serializes one access unit's NAL units into a single
// buffer, fragments it into Type-1 PES packets, and appends them to w. A
// zero-length access unit (no NAL units at all) produces no PES packet.
func writeAccessUnit(w *bitio.Writer, clock *Clock, au AccessUnit) {
	if len(au) == 0 {
		return
	}

	// pts is captured once, before any picture in this access unit advances
	// picture_count: increments accrued mid-concatenation affect later
	// access units, never this one.
	pts := clock.Base()

	auBuf := make([]byte, 0, 512)
	for _, nal := range au {
		if nal.IsPicture() {
			clock.AddPicture()
		}
		auBuf = append(auBuf, annexb.Serialize(nal)...)
	}

	limit := firstFragmentLimit
	ptsDtsFlags := uint8(mpegps.PtsDtsFlagsPts)
	for len(auBuf) != 0 {
		n := limit
		if n > len(auBuf) {
			n = len(auBuf)
		}
		chunk := auBuf[:n]
		auBuf = auBuf[n:]

		mpegps.WritePesPacket(w, mpegps.PesPacket{Type1: &mpegps.PesPacketType1{
			StreamId:    videoStreamId,
			PtsDtsFlags: ptsDtsFlags,
			Pts:         pts,
			Data:        chunk,
		}})

		limit = subsequentFragmentLimit
		ptsDtsFlags = mpegps.PtsDtsFlagsNone
	}
}
