package main

import (
	"os"
	"strings"

	"github.com/croldan/fbcache/internal/errutil"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

// serverURL resolves the server base URL from the --server flag or the
// FBCACHE_SERVER environment variable.
func serverURL(cmd *cobra.Command) string {
	server, err := cmd.Flags().GetString("server")
	if err != nil {
		errutil.ReportError(err, "Failed to get server flag")
		os.Exit(1)
	}
	if server == "" {
		server = os.Getenv("FBCACHE_SERVER")
	}
	if server == "" {
		server = defaultServer
	}
	return strings.TrimRight(server, "/")
}
