package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:          "mailbench",
	Short:        "Load test the mailbox runtime",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
		slog.SetDefault(log)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		res, err := run(ctx, cfg, log)
		if err != nil {
			return err
		}
		res.print(os.Stdout)
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntP("producers", "n", 8, "number of concurrent producers")
	f.IntP("posts", "c", 50_000, "posts per producer")
	f.Int("capacity", 0, "inbox capacity, 0 for unbounded")
	f.Int("report-every", 100_000, "log progress every N handled messages, 0 to disable")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :2121")
	f.String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlags(f)

	viper.SetEnvPrefix("MAILBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadConfig() (config, error) {
	cfg := config{
		Producers:   viper.GetInt("producers"),
		Posts:       viper.GetInt("posts"),
		Capacity:    viper.GetInt("capacity"),
		ReportEvery: viper.GetInt("report-every"),
		MetricsAddr: viper.GetString("metrics-addr"),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return cfg, fmt.Errorf("invalid log level: %w", err)
	}
	return cfg, cfg.validate()
}
