package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/croldan/fbcache"
	"github.com/croldan/fbcache/internal/errutil"
	"github.com/croldan/fbcache/internal/handler"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the cache HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		port := viper.GetInt("port")
		cacheDir := viper.GetString("cache-dir")
		capacity := viper.GetInt64("capacity")
		maxBytes := viper.GetInt64("max-bytes")
		keyStrategy := viper.GetString("key-strategy")
		evictionPolicy := viper.GetString("eviction-policy")

		cfg := fbcache.Config{
			Dir:            cacheDir,
			Capacity:       capacity,
			EvictionPolicy: evictionPolicy,
		}

		// --max-bytes switches the cache into byte accounting.
		if maxBytes > 0 {
			cfg.Mode = fbcache.ModeBytes
			cfg.Capacity = maxBytes
		}

		switch keyStrategy {
		case "structured":
			cfg.KeyStrategy = fbcache.StructuredKeys
		case "random":
			cfg.KeyStrategy = fbcache.RandomKeys
		default:
			slog.Warn("Unknown key strategy, defaulting to random", "strategy", keyStrategy)
			cfg.KeyStrategy = fbcache.RandomKeys
		}

		cache, err := fbcache.New(cfg)
		if err != nil {
			slog.Error("Failed to initialize cache", "error", err, "dir", cacheDir)
			os.Exit(1)
		}

		mux := http.NewServeMux()
		h := handler.NewCacheHandler(cache)
		mux.Handle("/cache", h)
		mux.Handle("/cache/", h)
		mux.Handle("/stats", h)

		addr := fmt.Sprintf(":%d", port)
		slog.Info("Starting server", "addr", addr, "cache_dir", cacheDir, "capacity", cfg.Capacity, "mode", cfg.Mode)

		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		if err := server.ListenAndServe(); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().Int("port", 8080, "Port to run the server on")
	serverCmd.Flags().String("cache-dir", "./cache", "Directory to store cached files")
	serverCmd.Flags().Int64("capacity", 1024, "Max number of cache entries")
	serverCmd.Flags().Int64("max-bytes", 0, "Max total cache size in bytes (if set, overrides --capacity)")
	serverCmd.Flags().String("key-strategy", "random", "Key strategy to use (random, structured)")
	serverCmd.Flags().String("eviction-policy", "lfu", "Eviction policy to use (lfu, lru)")

	serverCmd.Flags().VisitAll(func(f *pflag.Flag) {
		errutil.LogMsg(viper.BindPFlag(f.Name, f), "Failed to bind flag", "flag", f.Name)
	})
}
