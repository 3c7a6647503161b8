// Package damreader walks an assembled DAM MPEG-2 program stream back into
// structural records: pack headers, system headers, the program-stream map,
// PES packets of any shape, and the non-standard GOP-index PES. It is the
// read-side counterpart to damcontainer/segment.
package damreader

import (
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/internal/bitio"
	"github.com/bugVanisher/damps/mpegps"
)

// recordKind identifies which structural record a walk step produced.
type recordKind int

const (
	recordPackHeader recordKind = iota
	recordSystemHeader
	recordProgramStreamMap
	recordPes
	recordProgramEnd
)

// record is one structural unit recovered from the stream, tagged by kind.
// At most the field matching Kind is populated.
type record struct {
	Kind         recordKind
	Pos          int
	PackHeader   mpegps.PackHeader
	SystemHeader mpegps.SystemHeader
	Psm          mpegps.ProgramStreamMap
	Pes          mpegps.PesPacket
}

// next reads one record at r's current position, dispatching on the fourth
// start-code byte (the packet_id): B9 program end, BA pack header, BB
// system header, BC program-stream map, anything else a PES packet.
func next(r *bitio.Reader) (record, error) {
	pos := r.Tell()
	prefix, err := r.PeekBytes(4)
	if err != nil {
		return record{}, err
	}
	if prefix[0] != 0x00 || prefix[1] != 0x00 || prefix[2] != 0x01 {
		return record{}, errs.New(errs.KindInvalidStartCode, "damreader: expected 00 00 01 start code")
	}

	switch prefix[3] {
	case 0xB9:
		if _, err := r.ReadBytes(4); err != nil {
			return record{}, err
		}
		return record{Kind: recordProgramEnd, Pos: pos}, nil
	case 0xBA:
		h, err := mpegps.ReadPackHeader(r)
		if err != nil {
			return record{}, err
		}
		return record{Kind: recordPackHeader, Pos: pos, PackHeader: h}, nil
	case 0xBB:
		h, err := mpegps.ReadSystemHeader(r)
		if err != nil {
			return record{}, err
		}
		return record{Kind: recordSystemHeader, Pos: pos, SystemHeader: h}, nil
	case 0xBC:
		m, err := mpegps.ReadProgramStreamMap(r)
		if err != nil {
			return record{}, err
		}
		return record{Kind: recordProgramStreamMap, Pos: pos, Psm: m}, nil
	default:
		p, err := mpegps.ReadPesPacket(r)
		if err != nil {
			return record{}, err
		}
		return record{Kind: recordPes, Pos: pos, Pes: p}, nil
	}
}

// walk invokes visit once per record from r's current position until a
// program-end marker is consumed or end-of-stream is reached; either one is
// a normal, non-error termination. visit returning a non-nil error stops
// the walk and propagates it.
func walk(r *bitio.Reader, visit func(record) error) error {
	for r.Remaining() >= 4 {
		rec, err := next(r)
		if err != nil {
			return err
		}
		if err := visit(rec); err != nil {
			return err
		}
		if rec.Kind == recordProgramEnd {
			return nil
		}
	}
	return nil
}

// FindGopIndex scans buf for the first PES packet carrying the GOP-index
// stream_id (0xBF), decodes its payload as a GopIndexRecord, and returns it.
// Returns a KindNotFound error if no such packet is present.
func FindGopIndex(buf []byte) (damcontainer.GopIndexRecord, error) {
	r := bitio.NewReader(buf)
	var found *damcontainer.GopIndexRecord
	err := walk(r, func(rec record) error {
		if found != nil {
			return nil
		}
		if rec.Kind == recordPes && rec.Pes.Type2 != nil && rec.Pes.Type2.StreamId == damcontainer.GopIndexStreamId {
			parsed, err := damcontainer.ParseGopIndexRecord(rec.Pes.Type2.Data)
			if err != nil {
				return err
			}
			found = &parsed
		}
		return nil
	})
	if err != nil {
		return damcontainer.GopIndexRecord{}, err
	}
	if found == nil {
		return damcontainer.GopIndexRecord{}, errs.New(errs.KindNotFound, "damreader: no GOP-index PES (stream_id=0xBF) found")
	}
	return *found, nil
}
