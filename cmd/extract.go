package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <capture.pcap>",
	Short: "Decode RTP streams to per-stream WAV files",
	Long: `Extract scans a capture, assembles its RTP streams and decodes each
G.711 stream (PCMU or PCMA) to a mono 16-bit WAV file named
<prefix>_0x<ssrc>.wav in the output directory. Packets are reordered by
sequence number before decoding. Streams with other payload types are
skipped with a warning.

Examples:
  extractaudio extract call.pcap
  extractaudio extract -o /tmp/audio -p call call.pcap`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runExtractCommand(args[0])
	},
}

var extractPrefix string

func init() {
	extractCmd.Flags().StringVarP(&extractPrefix, "prefix", "p", "stream",
		"output file name prefix")
}

func runExtractCommand(path string) {
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

	paths, err := session.WriteWAVFiles(cfg.Output.Dir, extractPrefix)
	if err != nil {
		exitWithError("extraction failed", err)
	}
	if len(paths) == 0 {
		fmt.Println("No decodable RTP streams found")
		return
	}
	for _, p := range paths {
		fmt.Println(p)
	}
}
