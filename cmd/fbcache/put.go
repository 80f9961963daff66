package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/croldan/fbcache/internal/errutil"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put [key]",
	Short: "Store a value on a running server",
	Long: `Store a value read from --input (or stdin) on a running server.
With a key argument the value is stored under that key; without one the
server generates a key and prints it.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input, err := cmd.Flags().GetString("input")
		if err != nil {
			errutil.ReportError(err, "Failed to get input flag")
			os.Exit(1)
		}

		var in io.Reader = os.Stdin
		if input != "" {
			file, err := os.Open(input)
			if err != nil {
				errutil.ReportError(err, "Failed to open input file")
				os.Exit(1)
			}
			defer func() {
				errutil.LogMsg(file.Close(), "Failed to close input file")
			}()
			in = file
		}

		method := http.MethodPost
		url := serverURL(cmd) + "/cache"
		if len(args) == 1 {
			method = http.MethodPut
			url += "/" + args[0]
		}

		req, err := http.NewRequestWithContext(cmd.Context(), method, url, in)
		if err != nil {
			errutil.ReportError(err, "Failed to build request")
			os.Exit(1)
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			errutil.ReportError(err, "Request failed", "url", url)
			os.Exit(1)
		}
		defer func() {
			errutil.LogMsg(resp.Body.Close(), "Failed to close response body")
		}()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			if _, err := fmt.Fprintf(os.Stderr, "server replied %d: %s", resp.StatusCode, body); err != nil {
				errutil.ReportError(err, "Failed to print error to stderr")
			}
			os.Exit(1)
		}

		// The server answers with the key the value lives under.
		if _, err := os.Stdout.Write(body); err != nil {
			errutil.ReportError(err, "Failed to print key")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().String("server", "", "Server base URL (defaults to FBCACHE_SERVER or "+defaultServer+")")
	putCmd.Flags().StringP("input", "i", "", "Input file (defaults to stdin)")
}
