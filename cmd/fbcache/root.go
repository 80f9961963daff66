package main

import (
	"fmt"
	"os"

	"github.com/croldan/fbcache/internal/errutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "fbcache",
	Short: "A bounded, file-backed LFU cache",
	Long:  `fbcache stores opaque blobs as files under a bounded directory, evicting the least-frequently-used entries when the cache fills up.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if _, printErr := fmt.Fprintln(os.Stderr, err); printErr != nil {
			errutil.ReportError(printErr, "Failed to print error to stderr")
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	viper.SetEnvPrefix("FBCACHE")
	viper.AutomaticEnv()
}
