package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"camlink/pkg/logger"
	"camlink/pkg/viewer"
)

var (
	addr     string
	output   string
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", "127.0.0.1:49001", "server address")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "write the elementary stream here (\"-\" for stdout, empty to discard)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "log level")
}

var rootCmd = &cobra.Command{
	Use:   "camc",
	Short: "camc views a camlink stream and answers its heartbeats",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	logger.Configure(logger.Config{Level: logLevel})
	log := logger.WithComponent("main")

	var out io.Writer = io.Discard
	switch output {
	case "":
	case "-":
		out = os.Stdout
	default:
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	v, err := viewer.Dial(addr, out)
	if err != nil {
		return err
	}
	defer v.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", addr).Msg("connected")
	err = v.Run(ctx)

	st := v.Stats()
	log.Info().
		Uint64("frames", st.Frames).
		Uint64("bytes", st.Bytes).
		Uint64("heartbeats", st.Heartbeats).
		Uint64("checksum_mismatches", st.ChecksumMismatch).
		Msg("session ended")
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
