package segment

import "github.com/bugVanisher/damps/annexb"

// AccessUnit is the NAL units making up one coded picture.
type AccessUnit []annexb.NalUnit

// Sequence is a run of access units bounded by AUD/SPS boundaries; each
// sequence gets its own pack header and GOP-index entry.
type Sequence []AccessUnit

// Segment groups a flat, ordered NAL-unit list into sequences of access
// units by replaying the two-state AUD/SPS machine: state S0 (no SPS seen
// since the last boundary) and S1 (SPS seen inside the current sequence).
//
// The trailing in-flight access unit and sequence are NOT flushed at
// end-of-input. A sequence is committed only when an AUD arrives in state S1
// with a non-empty current sequence, so a single trailing AUD moves the last
// access unit into the current sequence but does not commit that sequence.
func Segment(units []annexb.NalUnit) []Sequence {
	var sequences []Sequence
	var currentSequence Sequence
	var currentAccessUnit AccessUnit
	spsDetected := false

	for _, u := range units {
		if u.NalUnitType == annexb.TypeAUD {
			if spsDetected && len(currentSequence) != 0 {
				sequences = append(sequences, currentSequence)
				currentSequence = nil
				spsDetected = false
			}
			if len(currentAccessUnit) != 0 {
				currentSequence = append(currentSequence, currentAccessUnit)
				currentAccessUnit = nil
			}
		}
		if u.NalUnitType == annexb.TypeSPS {
			spsDetected = true
		}
		currentAccessUnit = append(currentAccessUnit, u)
	}
	return sequences
}
