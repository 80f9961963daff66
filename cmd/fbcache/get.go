package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/croldan/fbcache/internal/errutil"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Fetch a cached value from a running server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			errutil.ReportError(err, "Failed to get output flag")
			os.Exit(1)
		}

		url := serverURL(cmd) + "/cache/" + key
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
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

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			if _, err := fmt.Fprintf(os.Stderr, "server replied %d: %s", resp.StatusCode, body); err != nil {
				errutil.ReportError(err, "Failed to print error to stderr")
			}
			os.Exit(1)
		}

		var out io.Writer = os.Stdout
		if output != "" {
			file, err := os.Create(output)
			if err != nil {
				errutil.ReportError(err, "Failed to create output file")
				os.Exit(1)
			}
			defer func() {
				errutil.LogMsg(file.Close(), "Failed to close output file")
			}()
			out = file
		}

		if _, err := io.Copy(out, resp.Body); err != nil {
			errutil.ReportError(err, "Failed to write value", "key", key)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().String("server", "", "Server base URL (defaults to FBCACHE_SERVER or "+defaultServer+")")
	getCmd.Flags().StringP("output", "o", "", "Output file (defaults to stdout)")
}
