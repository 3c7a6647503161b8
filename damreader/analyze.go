package damreader

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/internal/bitio"
)

// Analyze walks buf packet-by-packet and recomputes a GOP index from the
// pack-header positions it actually encounters, ignoring any stored
// GOP-index PES (the `analyze` subcommand, distinct from Dump's
// stored-index read). streamId selects which elementary stream's PES
// packets are consulted for PTS values, and is recorded as the returned
// record's StreamId.
//
// Each sequence's pack header position and SCR_base are used directly as
// the GOP-index entry's position/PTS: a sequence's pack header SCR_base
// always equals the PTS of that sequence's first access unit. PES PTS
// values of streamId are tracked only for the terminal entry, which takes
// the last PTS seen before the program-end marker. The prologue's pack
// header is excluded: it is recognizable by the system header that
// immediately follows it, which no sequence pack header has.
func Analyze(buf []byte, streamId uint8) (damcontainer.GopIndexRecord, error) {
	r := bitio.NewReader(buf)

	var entries []damcontainer.GopIndexEntry
	openPos := -1
	var openPts uint32
	lastSeenPts := uint32(0)

	closeOpen := func(endPos int) {
		if openPos < 0 {
			return
		}
		entries = append(entries, damcontainer.GopIndexEntry{
			PsPackHeaderPosition: uint64(openPos),
			AccessUnitSize:       uint32(endPos - openPos),
			Pts:                  openPts,
		})
		openPos = -1
	}

	err := walk(r, func(rec record) error {
		switch rec.Kind {
		case recordPackHeader:
			closeOpen(rec.Pos)
			openPos = rec.Pos
			openPts = uint32(rec.PackHeader.ScrBase)
			lastSeenPts = openPts
		case recordSystemHeader:
			// A pack header directly followed by a system header is the
			// container prologue's, not a sequence start: discard the open.
			openPos = -1
		case recordPes:
			if rec.Pes.Type1 != nil && rec.Pes.Type1.StreamId == streamId && rec.Pes.Type1.PtsDtsFlags != 0 {
				lastSeenPts = uint32(rec.Pes.Type1.Pts)
			}
		case recordProgramEnd:
			endPos := rec.Pos + 4
			closeOpen(rec.Pos)
			entries = append(entries, damcontainer.GopIndexEntry{
				PsPackHeaderPosition: uint64(endPos),
				AccessUnitSize:       0,
				Pts:                  lastSeenPts,
			})
		}
		return nil
	})
	if err != nil {
		return damcontainer.GopIndexRecord{}, err
	}
	if len(entries) == 0 {
		return damcontainer.GopIndexRecord{}, errs.New(errs.KindNotFound, "damreader: no pack headers found to analyze")
	}

	return damcontainer.GopIndexRecord{
		SubStreamId: 0xFF,
		Version:     1,
		StreamId:    streamId,
		Entries:     entries,
	}, nil
}
