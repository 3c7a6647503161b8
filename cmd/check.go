package cmd

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/bugVanisher/damps/common/errs"
	"github.com/bugVanisher/damps/damreader"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <in.ps>",
	Short: "Report which structural records a program stream carries and its convertability status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

var checkJSON bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the report as JSON")
}

// checkReportView is the check command's machine-readable report shape,
// consumed by scripted callers via --json.
type checkReportView struct {
	Bitmask             uint8  `json:"bitmask"`
	Status              string `json:"status"`
	PackHeaderPresent   bool   `json:"pack_header_present"`
	SystemHeaderPresent bool   `json:"system_header_present"`
	PsmPresent          bool   `json:"psm_present"`
	GopIndexPresent     bool   `json:"gop_index_present"`
}

func runCheck(inPath string) error {
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return errs.Wrapf(err, "cmd: reading %s", inPath)
	}

	result := damreader.Check(buf)
	view := checkReportView{
		Bitmask:             result.Bitmask,
		Status:              result.Status,
		PackHeaderPresent:   result.Bitmask&damreader.BitPackHeader != 0,
		SystemHeaderPresent: result.Bitmask&damreader.BitSystemHeader != 0,
		PsmPresent:          result.Bitmask&damreader.BitProgramStreamMap != 0,
		GopIndexPresent:     result.Bitmask&damreader.BitGopIndex != 0,
	}

	if checkJSON {
		out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(view, "", "  ")
		if err != nil {
			return errs.Wrapf(err, "cmd: marshaling check report")
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("bitmask=0x%02x pack_header=%v system_header=%v psm=%v gop_index=%v status=%s\n",
		view.Bitmask, view.PackHeaderPresent, view.SystemHeaderPresent, view.PsmPresent, view.GopIndexPresent, view.Status)
	return nil
}
