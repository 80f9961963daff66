package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/croldan/fbcache/internal/errutil"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [key]",
	Short: "Remove a cached value from a running server",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			errutil.ReportError(err, "Failed to get all flag")
			os.Exit(1)
		}

		url := serverURL(cmd) + "/cache"
		switch {
		case all && len(args) == 0:
		case !all && len(args) == 1:
			url += "/" + args[0]
		default:
			errutil.ReportError(fmt.Errorf("either a key or --all is required"), "Invalid arguments")
			os.Exit(1)
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete, url, nil)
		if err != nil {
			errutil.ReportError(err, "Failed to build request")
			os.Exit(1)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			errutil.ReportError(err, "Request failed", "url", url)
			os.Exit(1)
		}
		defer func() {
			errutil.LogMsg(resp.Body.Close(), "Failed to close response body")
		}()

		if resp.StatusCode != http.StatusNoContent {
			body, _ := io.ReadAll(resp.Body)
			if _, err := fmt.Fprintf(os.Stderr, "server replied %d: %s", resp.StatusCode, body); err != nil {
				errutil.ReportError(err, "Failed to print error to stderr")
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
	rmCmd.Flags().String("server", "", "Server base URL (defaults to FBCACHE_SERVER or "+defaultServer+")")
	rmCmd.Flags().Bool("all", false, "Clear the entire cache")
}
