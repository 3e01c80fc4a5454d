package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/natives/natives/boundary"
	"github.com/TheusHen/natives/natives/stream"
)

var errMissingKey = errors.New("cfb8: --key is required")

func newCryptCommand(a *app, encrypt bool) *cobra.Command {
	use, short := "decrypt", "Decrypt a file or stdin"
	if encrypt {
		use, short = "encrypt", "Encrypt a file or stdin"
	}
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrypt(cmd, encrypt)
		},
	}
	c.Flags().String("key", "", "16-byte key as 32 hex characters")
	c.Flags().String("in", "", "input file (default stdin)")
	c.Flags().String("out", "", "output file (default stdout)")
	c.Flags().Int("chunk", 4096, "bytes handed to the cipher per call")
	return c
}

func (a *app) runCrypt(cmd *cobra.Command, encrypt bool) (err error) {
	s := a.settings
	if s.Key == "" {
		return errMissingKey
	}
	key, err := hex.DecodeString(s.Key)
	if err != nil {
		return fmt.Errorf("cfb8: decode key: %w", err)
	}
	defer clear(key)

	in := cmd.InOrStdin()
	if s.In != "" {
		f, err := os.Open(s.In)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out := cmd.OutOrStdout()
	if s.Out != "" {
		f, ferr := os.Create(s.Out)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	adapter := boundary.New(boundary.WithStrict(s.Strict), boundary.WithLogger(a.logger))
	opts := []stream.Option{
		stream.WithAdapter(adapter),
		stream.WithBufferPool(stream.NewBufferPool(s.Chunk)),
	}

	var src io.Reader = in
	var dst io.Writer = out
	if encrypt {
		w, err := stream.NewWriter(out, key, opts...)
		if err != nil {
			return err
		}
		defer w.Close()
		dst = w
	} else {
		r, err := stream.NewReader(in, key, opts...)
		if err != nil {
			return err
		}
		defer r.Close()
		src = r
	}

	n, err := copyChunks(dst, src, s.Chunk)
	if err != nil {
		return err
	}
	a.logger.Info("done", "command", cmd.Name(), "bytes", n, "chunk", s.Chunk)
	return nil
}

// copyChunks copies src to dst in reads of at most chunk bytes.
func copyChunks(dst io.Writer, src io.Reader, chunk int) (int64, error) {
	buf := make([]byte, chunk)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			m, werr := dst.Write(buf[:n])
			total += int64(m)
			if werr != nil {
				return total, werr
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
