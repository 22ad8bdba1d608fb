package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/colleagues/internal/config"
	cerrors "github.com/rohankatakam/colleagues/internal/errors"
	"github.com/rohankatakam/colleagues/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logging.Logger
	cfg     *config.Config
)

// Exit codes
const (
	exitOK     = 0
	exitError  = 1
	exitTool   = 2
	exitSink   = 3
	exitConfig = 4
)

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		logger.Close()
	}
	if err != nil {
		if e, ok := cerrors.As(err); ok && verbose {
			fmt.Fprint(os.Stderr, e.DetailedString())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	switch cerrors.GetType(err) {
	case cerrors.ErrorTypeTool:
		return exitTool
	case cerrors.ErrorTypeSink:
		return exitSink
	case cerrors.ErrorTypeConfig, cerrors.ErrorTypeValidation:
		return exitConfig
	default:
		return exitError
	}
}

var rootCmd = &cobra.Command{
	Use:   "colleagues",
	Short: "Score who you collaborate with, mined from git history",
	Long: `colleagues measures how often you quickly rework code your colleagues
recently wrote. Each deletion of a line another author introduced within the
freshness window counts as one unit of collaboration.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return cerrors.Wrap(err, cerrors.ErrorTypeConfig, cerrors.SeverityCritical, "load config")
		}

		level := cfg.Log.Level
		if verbose {
			level = logrus.DebugLevel.String()
		}
		logger, err = logging.New(logging.Config{
			Level:      level,
			OutputFile: cfg.Log.File,
			JSONFormat: cfg.Log.JSON,
		})
		if err != nil {
			return cerrors.Wrap(err, cerrors.ErrorTypeConfig, cerrors.SeverityCritical, "init logging")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .colleagues/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`colleagues {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "colleagues %s\nBuild time: %s\nGit commit: %s\n", Version, BuildTime, GitCommit)
	},
}
