// Package cli wires the docload commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "docload",
	Short:   "Synthetic load generator for document databases",
	Version: version,
	Long: `Docload drives synthetic load against a document database from declarative
workload definitions. Workload files describe commands with parameter
placeholders; docload generates randomized values, stamps them into the
templates and executes the resulting commands at high repetition rate.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config-dir", "./config", "directory holding workload definition files")
	RootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(listCmd)
}

// newLogger builds the process logger at the requested level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loggerFromFlags builds a logger from the persistent flags, falling back to
// info on a bad level.
func loggerFromFlags(cmd *cobra.Command) *zap.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	log, err := newLogger(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log, _ = newLogger("info")
	}
	return log
}
