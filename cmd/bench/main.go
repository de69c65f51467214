package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"camlink/pkg/logger"
	"camlink/pkg/viewer"
)

var (
	addr     string
	duration time.Duration
	mute     bool
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&addr, "addr", "a", "127.0.0.1:49001", "server address")
	rootCmd.PersistentFlags().DurationVarP(&duration, "duration", "d", 30*time.Second, "how long to consume the stream")
	rootCmd.PersistentFlags().BoolVar(&mute, "mute", false, "withhold heartbeat acks and measure time to eviction")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "warn", "log level")
}

var rootCmd = &cobra.Command{
	Use:   "bench",
	Short: "bench soaks a camlink stream and reports throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	logger.Configure(logger.Config{Level: logLevel})

	v, err := viewer.Dial(addr, io.Discard)
	if err != nil {
		return err
	}
	defer v.Close()
	v.Mute = mute

	ctx := context.Background()
	if !mute {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	start := time.Now()
	runErr := v.Run(ctx)
	elapsed := time.Since(start)

	st := v.Stats()
	fmt.Printf("elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("frames:     %d (%.1f fps)\n", st.Frames, float64(st.Frames)/elapsed.Seconds())
	fmt.Printf("bytes:      %d (%.2f MB/s)\n", st.Bytes, float64(st.Bytes)/elapsed.Seconds()/1e6)
	fmt.Printf("heartbeats: %d\n", st.Heartbeats)
	if st.ChecksumMismatch > 0 {
		fmt.Printf("CHECKSUM MISMATCHES: %d\n", st.ChecksumMismatch)
	}
	if mute {
		// With acks withheld the server should have cut us off ~5s after
		// its first heartbeat; the dropped connection is the expected result.
		fmt.Printf("evicted after: %v\n", elapsed.Round(time.Millisecond))
		return nil
	}
	return runErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
