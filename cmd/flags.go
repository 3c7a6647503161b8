package cmd

import (
	"math/big"

	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damcontainer"
	"github.com/bugVanisher/damps/segment"
)

// parseFrameRate resolves the `--frame_rate` flag's fixed set of accepted
// values to an exact rational.
func parseFrameRate(s string) (*big.Rat, error) {
	switch s {
	case "24000/1001":
		return segment.FrameRate24000_1001, nil
	case "24":
		return segment.FrameRate24, nil
	case "30000/1001":
		return segment.FrameRate30000_1001, nil
	case "30":
		return segment.FrameRate30, nil
	case "60000/1001":
		return segment.FrameRate60000_1001, nil
	case "60":
		return segment.FrameRate60, nil
	default:
		return nil, errs.Newf(errs.KindInvalidField, "cmd: unsupported --frame_rate %q", s)
	}
}

// parseCodec resolves the `--input_codec` flag.
func parseCodec(s string) (damcontainer.Codec, error) {
	switch s {
	case "avc", "":
		return damcontainer.CodecAvc, nil
	case "hevc":
		return damcontainer.CodecHevc, nil
	default:
		return 0, errs.Newf(errs.KindInvalidField, "cmd: unsupported --input_codec %q", s)
	}
}
