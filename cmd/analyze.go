package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damreader"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <in.ps>",
	Short: "Scan a program stream and print a freshly computed GOP index, ignoring any stored one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(args[0])
	},
}

var analyzeStreamId string

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeStreamId, "stream_id", "0xE0", "elementary stream_id to index, e.g. 0xE0")
}

func parseStreamId(s string) (uint8, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, errs.Newf(errs.KindInvalidField, "cmd: invalid --stream_id %q", s)
	}
	return uint8(v), nil
}

func runAnalyze(inPath string) error {
	streamId, err := parseStreamId(analyzeStreamId)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(inPath)
	if err != nil {
		return errs.Wrapf(err, "cmd: reading %s", inPath)
	}

	rec, err := damreader.Analyze(buf, streamId)
	if err != nil {
		return errs.Wrapf(err, "cmd: analyzing %s", inPath)
	}

	fmt.Printf("analyzed gop_index: stream_id=0x%02x entries=%d\n", rec.StreamId, len(rec.Entries))
	for _, e := range rec.Entries {
		fmt.Printf("  (ps_pack_header_position=%d, access_unit_size=%d, pts=%d, pts_msec=%d)\n",
			e.PsPackHeaderPosition, e.AccessUnitSize, e.Pts, damreader.PtsMsec(e.Pts))
	}
	return nil
}
