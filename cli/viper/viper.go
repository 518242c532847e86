package viper

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	EncodeViper = viper.New()
	DecodeViper = viper.New()
)

// BindPFlags binds flags to v, every flag can also be set by a SASLFRAME_ prefixed environment variable.
func BindPFlags(v *viper.Viper, flags *pflag.FlagSet) {
	// set default values
	flags.VisitAll(func(f *pflag.Flag) {
		if f.DefValue != "" {
			v.SetDefault(f.Name, f.DefValue)
		}
	})
	// bind environment variables
	v.SetEnvPrefix("SASLFRAME")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.BindPFlags(flags)
	v.AutomaticEnv()
}

// Payload returns the payload given either as text by the "payload" key or hex encoded by the "hex" key.
func Payload(v *viper.Viper) ([]byte, error) {
	text, hexText := v.GetString("payload"), v.GetString("hex")
	if text != "" && hexText != "" {
		return nil, errors.New("only one of --payload and --hex can be set")
	}
	if hexText != "" {
		return hex.DecodeString(strings.ReplaceAll(hexText, " ", ""))
	}
	return []byte(text), nil
}
