package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/extract"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.pcap> <out.pcap>",
	Short: "Rewrite a capture as an Ethernet-framed pcap",
	Long: `Convert reframes every IPv4/UDP record as a canonical Ethernet frame with
synthetic MAC addresses and IP options stripped, and drops everything else.

This makes loopback and Linux cooked captures digestible by tools that only
accept Ethernet link types.

Examples:
  extractaudio convert loopback.pcap ethernet.pcap`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runConvertCommand(args[0], args[1])
	},
}

func runConvertCommand(inPath, outPath string) {
	if _, err := setup(); err != nil {
		exitWithError("failed to load configuration", err)
	}

	r, closer, err := openCapture(inPath)
	if err != nil {
		exitWithError("failed to open capture", err)
	}
	defer closer()

	out, err := os.Create(outPath)
	if err != nil {
		exitWithError(fmt.Sprintf("failed to create %s", outPath), err)
	}
	defer out.Close()

	n, err := extract.Convert(r, out)
	if err != nil {
		exitWithError("conversion failed", err)
	}
	fmt.Printf("Wrote %d packet(s) to %s\n", n, outPath)
}
