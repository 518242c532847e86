package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yomorun/saslframe/cli/viper"
	"github.com/yomorun/saslframe/core/sasl"
	"github.com/yomorun/saslframe/core/transport"
	"github.com/yomorun/saslframe/pkg/config"
	"github.com/yomorun/saslframe/pkg/log"
)

type decodeOptions struct {
	// negotiation is the number of negotiation frames, negative means until a COMPLETE frame.
	negotiation int
	limits      config.Limits
	output      string
	preview     int
}

// frameRecord is one decoded frame as printed.
type frameRecord struct {
	Index       int    `yaml:"index"`
	Kind        string `yaml:"kind"`
	Status      string `yaml:"status,omitempty"`
	PayloadSize int    `yaml:"payload_size"`
	Payload     string `yaml:"payload"`
}

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Print the sasl frames of a captured stream",
	Long: "Print the sasl frames of a captured stream, read from a file or stdin.\n" +
		"The stream starts with negotiation frames, by default until a COMPLETE frame, followed by data frames.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.DecodeViper

		opts := decodeOptions{
			negotiation: v.GetInt("negotiation"),
			output:      v.GetString("output"),
			preview:     v.GetInt("preview"),
		}

		if path := v.GetString("config"); path != "" {
			conf, err := config.ParseConfigFile(path)
			if err != nil {
				return err
			}
			opts.limits = conf.Limits
			if !cmd.Flags().Changed("negotiation") && conf.Negotiation != nil {
				opts.negotiation = *conf.Negotiation
			}
		} else {
			limits, err := config.LimitsFromEnv()
			if err != nil {
				return err
			}
			opts.limits = limits
		}

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		count, err := decodeStream(in, cmd.OutOrStdout(), opts)
		if err != nil {
			log.FailureStatusEvent(cmd.ErrOrStderr(), "decoded %d frames before the error", count)
			return err
		}
		log.SuccessStatusEvent(cmd.ErrOrStderr(), "decoded %d frames", count)
		return nil
	},
}

// decodeStream prints every frame of r to w and returns the number of frames.
func decodeStream(r io.Reader, w io.Writer, opts decodeOptions) (int, error) {
	p, err := newFramePrinter(w, opts.output)
	if err != nil {
		return 0, err
	}
	defer p.close()

	var (
		src         = transport.Blocking(r)
		negotiation = sasl.NewNegotiationFrameReader(opts.limits.NegotiationOptions()...)
		data        = sasl.NewDataFrameReader(opts.limits.DataOptions()...)
		negotiating = opts.negotiation != 0
		count       int
	)

	for {
		rec := frameRecord{Index: count}

		if negotiating {
			if _, err := negotiation.ReadAll(src); err != nil {
				if endOfStream(err, negotiation.Header()) {
					return count, nil
				}
				return count, err
			}
			status := negotiation.Header().Status()
			payload, _ := negotiation.Payload()

			rec.Kind = "negotiation"
			rec.Status = status.String()
			rec.PayloadSize = len(payload)
			rec.Payload = preview(payload, opts.preview)
			negotiation.Clear()

			switch {
			case status == sasl.StatusBad || status == sasl.StatusError:
				negotiating = false
			case opts.negotiation < 0 && status == sasl.StatusComplete:
				negotiating = false
			case opts.negotiation > 0 && count+1 >= opts.negotiation:
				negotiating = false
			}
		} else {
			if _, err := data.ReadAll(src); err != nil {
				if endOfStream(err, data.Header()) {
					return count, nil
				}
				return count, err
			}
			payload, _ := data.Payload()

			rec.Kind = "data"
			rec.PayloadSize = len(payload)
			rec.Payload = preview(payload, opts.preview)
			data.Clear()
		}

		if err := p.print(rec); err != nil {
			return count, err
		}
		count++
	}
}

// endOfStream reports whether err is the stream ending cleanly between two frames.
func endOfStream(err error, h sasl.Header) bool {
	return errors.Is(err, io.EOF) && !h.IsComplete()
}

// framePrinter prints records as text lines or as a stream of yaml documents.
type framePrinter struct {
	w   io.Writer
	enc *yaml.Encoder
}

func newFramePrinter(w io.Writer, output string) (*framePrinter, error) {
	switch output {
	case "yaml":
		return &framePrinter{w: w, enc: yaml.NewEncoder(w)}, nil
	case "text", "":
		return &framePrinter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output %q, it should be text or yaml", output)
	}
}

func (p *framePrinter) print(rec frameRecord) error {
	if p.enc != nil {
		return p.enc.Encode(rec)
	}
	status := ""
	if rec.Status != "" {
		status = " " + colorStatus(rec.Status)
	}
	_, err := fmt.Fprintf(p.w, "#%d %s%s size=%d payload=%s\n", rec.Index, rec.Kind, status, rec.PayloadSize, rec.Payload)
	return err
}

func (p *framePrinter) close() error {
	if p.enc != nil {
		return p.enc.Close()
	}
	return nil
}

func colorStatus(status string) string {
	switch status {
	case sasl.StatusComplete.String():
		return log.Green(status)
	case sasl.StatusBad.String(), sasl.StatusError.String():
		return log.Red(status)
	default:
		return log.Cyan(status)
	}
}

// preview quotes printable payloads and hex encodes binary ones, keeping at most limit bytes.
func preview(b []byte, limit int) string {
	suffix := ""
	if limit > 0 && len(b) > limit {
		b = b[:limit]
		suffix = "..."
	}
	if utf8.Valid(b) && isPrintable(string(b)) {
		return fmt.Sprintf("%q%s", b, suffix)
	}
	return hex.EncodeToString(b) + suffix
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			return false
		}
	}
	return true
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().IntP("negotiation", "n", -1, "number of negotiation frames, -1 reads them until a COMPLETE frame")
	decodeCmd.Flags().StringP("config", "c", "", "config file (.yaml|.yml) with frame limits")
	decodeCmd.Flags().StringP("output", "o", "text", "output format: text or yaml")
	decodeCmd.Flags().Int("preview", 32, "max payload bytes to print, 0 for all")

	viper.BindPFlags(viper.DecodeViper, decodeCmd.Flags())
}
