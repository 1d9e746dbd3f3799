// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igorolhovskiy/rtpproxy/internal/config"
	"github.com/igorolhovskiy/rtpproxy/internal/log"
	"github.com/igorolhovskiy/rtpproxy/internal/pcap"
)

var (
	// Global flags
	configFile string
	outputDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "extractaudio",
	Short: "Extract and analyze RTP media from pcap captures",
	Long: `extractaudio reads classic libpcap capture files of RTP traffic and turns
them into something useful: per-stream WAV audio, per-SSRC pcap files,
Ethernet-normalized captures, or a stream-level summary report.

Captures framed as loopback (DLT_NULL), Linux cooked (DLT_LINUX_SLL) and
Ethernet are supported; records of any other shape are counted and skipped.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "",
		"output directory (overrides output.dir from config)")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(extractCmd)
}

// setup loads configuration and initializes logging for a subcommand run.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}
	if err := log.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCapture opens a pcap file and wraps it in a record reader. The
// returned close function releases the underlying file.
func openCapture(path string) (*pcap.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture: %w", err)
	}
	r, err := pcap.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("parse capture %s: %w", path, err)
	}
	return r, f.Close, nil
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
