package cmd

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheusHen/natives/natives/boundary"
)

// BenchResult is what bench reports.
type BenchResult struct {
	Bytes    int64
	Chunk    int
	Elapsed  time.Duration
	Degraded uint64
}

// MiBPerSecond returns the measured throughput.
func (r BenchResult) MiBPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Bytes) / (1 << 20) / r.Elapsed.Seconds()
}

func newBenchCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "bench",
		Short: "Measure cipher throughput",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runBench(a.settings, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d bytes in %d-byte chunks in %s (%.1f MiB/s)\n",
				res.Bytes, res.Chunk, res.Elapsed.Round(time.Microsecond), res.MiBPerSecond())
			return nil
		},
	}
	c.Flags().Int64("size", 64<<20, "total bytes to process")
	c.Flags().Int("chunk", 32*1024, "bytes per process call")
	return c
}

func runBench(s *Settings, logger *slog.Logger) (BenchResult, error) {
	adapter := boundary.New(boundary.WithStrict(s.Strict), boundary.WithLogger(logger))

	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return BenchResult{}, err
	}
	h, err := adapter.Create(key, true)
	if err != nil {
		return BenchResult{}, err
	}
	defer adapter.Destroy(h)

	buf := make([]byte, s.Chunk)
	var done int64
	start := time.Now()
	for done < s.Size {
		n := int64(len(buf))
		if rem := s.Size - done; rem < n {
			n = rem
		}
		// In place, as hosts do with direct buffers.
		if err := adapter.Process(h, buf[:n], buf[:n]); err != nil {
			return BenchResult{}, err
		}
		done += n
	}
	res := BenchResult{
		Bytes:    done,
		Chunk:    s.Chunk,
		Elapsed:  time.Since(start),
		Degraded: adapter.Stats().Degraded,
	}
	logger.Debug("bench finished", "bytes", res.Bytes, "elapsed", res.Elapsed, "degraded", res.Degraded)
	return res, nil
}
