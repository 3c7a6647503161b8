package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damreader"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <in.ps>",
	Short: "Print the stored GOP-index record and each of its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDump(args[0])
	},
}

var dumpJSON bool

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "print entries as JSON instead of a text table")
}

// gopIndexEntryView is the printable/JSON-able shape of one GOP-index
// entry, including the derived pts_msec column.
type gopIndexEntryView struct {
	PsPackHeaderPosition uint64 `json:"ps_pack_header_position"`
	AccessUnitSize       uint32 `json:"access_unit_size"`
	Pts                  uint32 `json:"pts"`
	PtsMsec              uint32 `json:"pts_msec"`
}

func runDump(inPath string) error {
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return errs.Wrapf(err, "cmd: reading %s", inPath)
	}

	rec, err := damreader.Dump(buf)
	if err != nil {
		return errs.Wrapf(err, "cmd: dumping GOP index from %s", inPath)
	}

	views := make([]gopIndexEntryView, len(rec.Entries))
	for i, e := range rec.Entries {
		views[i] = gopIndexEntryView{
			PsPackHeaderPosition: e.PsPackHeaderPosition,
			AccessUnitSize:       e.AccessUnitSize,
			Pts:                  e.Pts,
			PtsMsec:              damreader.PtsMsec(e.Pts),
		}
	}

	if dumpJSON {
		out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(views, "", "  ")
		if err != nil {
			return errs.Wrapf(err, "cmd: marshaling GOP index")
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("gop_index: sub_stream_id=0x%02x version=%d stream_id=0x%02x page=%d/%d entries=%d\n",
		rec.SubStreamId, rec.Version, rec.StreamId, rec.PageNumber, rec.PageCount, len(rec.Entries))
	for _, v := range views {
		fmt.Printf("  (ps_pack_header_position=%d, access_unit_size=%d, pts=%d, pts_msec=%d)\n",
			v.PsPackHeaderPosition, v.AccessUnitSize, v.Pts, v.PtsMsec)
	}
	return nil
}
