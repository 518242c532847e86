package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yomorun/saslframe/cli/viper"
	"github.com/yomorun/saslframe/core/sasl"
	"github.com/yomorun/saslframe/pkg/log"
)

type encodeOptions struct {
	status  string
	data    bool
	payload []byte
	chunk   int
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Write one sasl frame",
	Long:  "Write one negotiation frame (--status) or data frame (--data) to stdout or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.EncodeViper

		payload, err := viper.Payload(v)
		if err != nil {
			return err
		}
		opts := encodeOptions{
			status:  v.GetString("status"),
			data:    v.GetBool("data"),
			payload: payload,
			chunk:   v.GetInt("chunk"),
		}

		out := cmd.OutOrStdout()
		if path := v.GetString("out"); path != "" && path != "-" {
			flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
			if v.GetBool("append") {
				flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
			}
			f, err := os.OpenFile(path, flag, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		n, writes, err := encodeFrame(out, opts)
		if err != nil {
			return err
		}
		log.SuccessStatusEvent(cmd.ErrOrStderr(), "wrote a frame of %d bytes in %d writes", n, writes)
		return nil
	},
}

// encodeFrame writes one frame to w and returns the frame size and the number of write calls.
func encodeFrame(w io.Writer, opts encodeOptions) (int, int, error) {
	cw := &chunkWriter{w: w, chunk: opts.chunk}

	var (
		writer *sasl.Writer
		err    error
	)
	if opts.data {
		if opts.status != "" {
			return 0, 0, fmt.Errorf("--status can not be used with --data")
		}
		writer, err = sasl.NewDataWriter(cw).WithPayload(opts.payload)
	} else {
		if opts.status == "" {
			return 0, 0, fmt.Errorf("--status is required for a negotiation frame")
		}
		status, perr := sasl.ParseStatus(opts.status)
		if perr != nil {
			return 0, 0, perr
		}
		writer, err = sasl.NewNegotiationWriter(cw).WithStatusAndPayload(status, opts.payload)
	}
	if err != nil {
		return 0, 0, err
	}

	size := writer.Remaining()
	for !writer.IsComplete() {
		if err := writer.Write(); err != nil {
			return cw.written, cw.calls, err
		}
	}

	return size, cw.calls, nil
}

// chunkWriter accepts at most chunk bytes per Write, zero means no limit.
type chunkWriter struct {
	w       io.Writer
	chunk   int
	calls   int
	written int
}

func (c *chunkWriter) Write(p []byte) (int, error) {
	c.calls++
	if c.chunk > 0 && len(p) > c.chunk {
		p = p[:c.chunk]
	}
	n, err := c.w.Write(p)
	c.written += n
	return n, err
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("status", "s", "", "negotiation status: START, OK, BAD, ERROR or COMPLETE")
	encodeCmd.Flags().Bool("data", false, "write a data frame instead of a negotiation frame")
	encodeCmd.Flags().StringP("payload", "p", "", "payload as text")
	encodeCmd.Flags().String("hex", "", "payload as hex")
	encodeCmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	encodeCmd.Flags().Bool("append", false, "append to the output file")
	encodeCmd.Flags().Int("chunk", 0, "max bytes per write call, 0 for no limit")

	viper.BindPFlags(viper.EncodeViper, encodeCmd.Flags())
}
