package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/igorolhovskiy/rtpproxy/internal/extract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <capture.pcap>",
	Short: "Summarize the RTP streams of a capture",
	Long: `Analyze scans a capture, classifies every record and prints a stream-level
summary: link type, record counters, and per-stream SSRC, addresses, codec,
packet count and duration.

Examples:
  extractaudio analyze call.pcap
  extractaudio analyze --format json call.pcap`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAnalyzeCommand(args[0])
	},
}

var analyzeFormat string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "yaml",
		"report format: yaml or json")
}

func runAnalyzeCommand(path string) {
	cfg, err := setup()
	if err != nil {
		exitWithError("failed to load configuration", err)
	}

	r, closer, err := openCapture(path)
	if err != nil {
		exitWithError("failed to open capture", err)
	}
	defer closer()

	session := extract.NewSession(cfg)
	if err := session.Scan(r); err != nil {
		exitWithError("failed to scan capture", err)
	}
	report := session.Report()

	var out []byte
	switch analyzeFormat {
	case "yaml":
		out, err = yaml.Marshal(report)
	case "json":
		out, err = json.MarshalIndent(report, "", "  ")
	default:
		exitWithError(fmt.Sprintf("unsupported format %q (must be yaml or json)", analyzeFormat), nil)
	}
	if err != nil {
		exitWithError("failed to marshal report", err)
	}
	os.Stdout.Write(out)
	if analyzeFormat == "json" {
		fmt.Println()
	}
}
