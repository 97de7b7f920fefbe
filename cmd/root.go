package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskmark/internal/banner"
	"diskmark/internal/cli"
	"diskmark/internal/fio"
	"diskmark/internal/platform"
	"diskmark/internal/tui"
	"diskmark/internal/volumes"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string

	// CLI Flags
	path     string
	profile  string
	backend  string
	outDir   string
	fioBin   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "diskmark",
	Short: "DiskMark - Disk Speed Testing Tool",
	Long: `
DiskMark benchmarks a disk with fio and prints a classic
CrystalDiskMark-style report.

Without --path it lists the detected volumes for interactive selection.
Raw fio results and the formatted report are written to the output
directory, named by timestamp and content hash.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.Options{
			Path:    path,
			Profile: profile,
			Backend: backend,
			OutDir:  outDir,
			Binary:  fioBin,
			Version: Version,
		}
		return cli.Start(context.Background(), platform.New(), opts)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	// Custom Help with Banner
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	if err := rootCmd.Execute(); err != nil {
		exitCode := 1
		switch {
		case errors.Is(err, fio.ErrCancelled), errors.Is(err, tui.ErrSelectionCancelled):
			log.Info().Msg("cancelled")
			exitCode = 130
		case errors.Is(err, fio.ErrToolUnavailable):
			log.Error().Msg("fio is not installed or not in PATH; install fio or use --backend native")
		case errors.Is(err, volumes.ErrNoVolumes):
			log.Error().Msg("no volumes detected")
		case errors.Is(err, cli.ErrInvalidPath):
			log.Error().Msg(err.Error())
		default:
			log.Error().Err(err).Msg("benchmark failed")
		}
		os.Exit(exitCode)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.AddCommand(historyCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.diskmark.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "Output directory for results and reports")

	rootCmd.Flags().StringVarP(&path, "path", "p", "", "Path to the directory to test (omit for interactive selection)")
	rootCmd.Flags().StringVar(&profile, "profile", "", "fio job file (defaults to the built-in CDM8 profile)")
	rootCmd.Flags().StringVar(&backend, "backend", "fio", "Benchmark backend (fio, native)")
	rootCmd.Flags().StringVar(&fioBin, "fio-bin", "", "fio binary to invoke (defaults to fio in PATH)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".diskmark")
		}
	}
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		if v := viper.GetString("out"); v != "" && outDir == "out" {
			outDir = v
		}
		if v := viper.GetString("backend"); v != "" && backend == "fio" {
			backend = v
		}
		if v := viper.GetString("log-level"); v != "" && logLevel == "info" {
			logLevel = v
		}
	}
}

func initLogging() {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().
		Level(level)
}

// --- History Subcommand ---
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past benchmark runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.History(outDir)
	},
}
