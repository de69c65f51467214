package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"camlink/pkg/logger"
	"camlink/pkg/protocol"
	"camlink/pkg/source"
	"camlink/pkg/stats"
	"camlink/pkg/streamer"
)

var (
	port        int
	width       uint16
	height      uint16
	input       string
	fps         int
	frameSize   int
	loop        bool
	metricsAddr string
	dbPath      string
	logLevel    string
)

func init() {
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", protocol.DefaultPort, "listening TCP port")
	rootCmd.PersistentFlags().Uint16Var(&width, "width", protocol.DefaultWidth, "frame width in pixels")
	rootCmd.PersistentFlags().Uint16Var(&height, "height", protocol.DefaultHeight, "frame height in pixels")
	rootCmd.PersistentFlags().StringVarP(&input, "input", "i", "", "H.264 elementary stream file; empty for a synthetic source")
	rootCmd.PersistentFlags().IntVar(&fps, "fps", 30, "frame rate")
	rootCmd.PersistentFlags().IntVar(&frameSize, "frame_size", 16*1024, "synthetic frame size in bytes")
	rootCmd.PersistentFlags().BoolVar(&loop, "loop", true, "replay the input file endlessly")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics_addr", "", "prometheus metrics address (e.g. :9090), empty to disable")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "session journal sqlite path, empty to disable")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "info", "log level")
}

var rootCmd = &cobra.Command{
	Use:   "cams",
	Short: "cams streams live H.264 video to a single viewer over TCP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	logger.Configure(logger.Config{Level: logLevel})
	log := logger.WithComponent("main")

	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	var journal *stats.Journal
	if dbPath != "" {
		var err error
		journal, err = stats.Open(dbPath)
		if err != nil {
			return err
		}
		defer journal.Close()
	}

	s, err := streamer.New(
		streamer.Config{Port: port, Width: width, Height: height},
		streamer.WithJournal(journal),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			log.Info().Str("addr", metricsAddr).Msg("metrics listening")
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	var src source.Source
	if input != "" {
		src = &source.FileSource{Path: input, FPS: fps, Loop: loop}
	} else {
		src = &source.Synthetic{FrameSize: frameSize, FPS: fps}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("fps", fps).Str("input", input).Msg("stream starting")
	if err := src.Run(ctx, s.Push); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("stream stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
