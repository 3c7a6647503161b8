package cmd

import (
	"os"

	"github.com/bugVanisher/damps/annexb"
	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/segment"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <in.h264> <out.ps>",
	Short: "Convert an Annex-B H.264 elementary stream into a DAM-compatible MPEG-2 program stream",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(args[0], args[1])
	},
}

var (
	generateInputCodec string
	generateFrameRate  string
)

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&generateInputCodec, "input_codec", "avc", "input elementary stream codec: avc|hevc")
	generateCmd.Flags().StringVar(&generateFrameRate, "frame_rate", "30000/1001", "frame rate: 24000/1001|24|30000/1001|30|60000/1001|60")
}

func runGenerate(inPath, outPath string) error {
	codec, err := parseCodec(generateInputCodec)
	if err != nil {
		return err
	}
	frameRate, err := parseFrameRate(generateFrameRate)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		return errs.Wrapf(err, "cmd: reading %s", inPath)
	}

	units, err := indexAndParseNalUnits(raw)
	if err != nil {
		return err
	}
	log.Info().Int("nal_units", len(units)).Str("input_codec", generateInputCodec).Str("frame_rate", generateFrameRate).Msg("scanned Annex-B NAL units")

	out, err := segment.GenerateFile(units, codec, frameRate)
	if err != nil {
		return errs.Wrapf(err, "cmd: generating DAM program stream")
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return errs.Wrapf(err, "cmd: writing %s", outPath)
	}
	log.Info().Str("out", outPath).Int("bytes", len(out)).Msg("wrote DAM program stream")
	return nil
}

// indexAndParseNalUnits scans raw for Annex-B start codes and parses each
// resulting slice into a NalUnit, in order.
func indexAndParseNalUnits(raw []byte) ([]annexb.NalUnit, error) {
	entries := annexb.IndexNalUnits(raw)
	units := make([]annexb.NalUnit, 0, len(entries))
	for _, e := range entries {
		n, err := annexb.Parse(raw[e.Offset : e.Offset+e.Length])
		if err != nil {
			return nil, err
		}
		units = append(units, n)
	}
	return units, nil
}
