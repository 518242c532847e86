/*
Copyright © 2021 CELLA, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yomorun/saslframe/core/ylog"
	"github.com/yomorun/saslframe/pkg/log"
)

// Version is the version of the saslframe command line.
var Version = "0.1.0"

var (
	verbose bool
	jsonLog bool
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "saslframe",
	Short:         "Encode and decode sasl transport frames",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			ylog.SetDefault(ylog.NewFromConfig(ylog.Config{Level: "debug", Format: "text"}))
		}
		if jsonLog {
			log.EnableJSONFormat()
		}
		if noColor {
			log.DisableColor()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.FailureStatusEvent(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initDotEnv)

	rootCmd.SetVersionTemplate(fmt.Sprintf("saslframe version: %s\n", rootCmd.Version))

	// overwrite the shorthand of version flag to V.
	rootCmd.Flags().BoolP("version", "V", false, "version for saslframe")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "print status lines as json")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initDotEnv loads environment variables from .env file.
func initDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
			os.Exit(1)
		}
	}
}
