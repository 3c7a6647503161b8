package segment

import (
	"math/big"

	"github.com/bugVanisher/damps/annexb"
	"github.com/bugVanisher/damps/damcontainer"
)

// GenerateFile runs the full pipeline: segment units into sequences,
// packetize them into a payload with payload-relative GOP-index entries,
// then hand off to damcontainer to rebase those entries and assemble the
// final prologue ∥ gop_index_PES ∥ payload ∥ program_end byte stream.
func GenerateFile(units []annexb.NalUnit, codec damcontainer.Codec, frameRate *big.Rat) ([]byte, error) {
	sequences := Segment(units)
	result := Generate(sequences, frameRate)
	return damcontainer.AssembleWithRebase(codec, result.Entries, result.Payload)
}
