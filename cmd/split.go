package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/extract"
)

var splitCmd = &cobra.Command{
	Use:   "split <capture.pcap>",
	Short: "Split a capture into one pcap per RTP stream",
	Long: `Split demultiplexes a capture's RTP packets by SSRC into separate
Ethernet-framed pcap files named <prefix>_0x<ssrc>.pcap in the output
directory. RTCP and unrecognized records are dropped.

Examples:
  extractaudio split call.pcap
  extractaudio split -o /tmp/streams -p call call.pcap`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runSplitCommand(args[0])
	},
}

var splitPrefix string

func init() {
	splitCmd.Flags().StringVarP(&splitPrefix, "prefix", "p", "stream",
		"output file name prefix")
}

func runSplitCommand(path string) {
	cfg, err := setup()
	if err != nil {
		exitWithError("failed to load configuration", err)
	}

	r, closer, err := openCapture(path)
	if err != nil {
		exitWithError("failed to open capture", err)
	}
	defer closer()

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		exitWithError("failed to create output directory", err)
	}

	counts, err := extract.Split(r, func(ssrc uint32) (io.WriteCloser, error) {
		name := filepath.Join(cfg.Output.Dir, fmt.Sprintf("%s_0x%08x.pcap", splitPrefix, ssrc))
		return os.Create(name)
	})
	if err != nil {
		exitWithError("split failed", err)
	}
	if len(counts) == 0 {
		fmt.Println("No RTP streams found")
		return
	}
	for ssrc, n := range counts {
		fmt.Printf("0x%08x: %d packet(s)\n", ssrc, n)
	}
}
