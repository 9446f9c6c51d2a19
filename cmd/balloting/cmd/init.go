package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	logging "github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"balloting-backend/api"
	"balloting-backend/common"
	"balloting-backend/config"
	"balloting-backend/engine"
	"balloting-backend/errors"
	"balloting-backend/ledger"
	"balloting-backend/metadata"
	"balloting-backend/pinning"
	"balloting-backend/registry"
	"balloting-backend/service"
	"balloting-backend/storage"
)

var (
	flagConfig    string = common.GetENVValue(config.EnvPrefix+"CONFIG", "")
	flagLogLevel  string
	flagLogOutput string
)

var log logging.Logger = logging.New("module", "main")

var rootCmd = &cobra.Command{
	Use:           "balloting",
	Short:         "balloting node and tools",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(c *cobra.Command, args []string) {
		if len(args) < 1 {
			c.Usage()
		}
	},
}

func init() {
	common.SetLogging(log, common.DefaultLogLevel, common.DefaultLogHandler)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", flagConfig, "yaml config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level, {crit, error, warn, info, debug}")
	rootCmd.PersistentFlags().StringVar(&flagLogOutput, "log-output", "", "write JSON logs to this file instead of stdout")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func SetArgs(s []string) {
	rootCmd.SetArgs(s)
}

func printError(w io.Writer, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		fmt.Fprintf(w, "error: %s\n", e.Message)
		for k, v := range e.Data {
			fmt.Fprintf(w, "  %s: %v\n", k, v)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

// loadConfig reads --config, applies BALLOT_* variables and then the
// persistent flags, and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if len(flagLogLevel) > 0 {
		cfg.LogLevel = flagLogLevel
	}
	if len(flagLogOutput) > 0 {
		cfg.LogOutput = flagLogOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setLogging(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setLogging(cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	handler, err := common.NewLogHandler(cfg.LogOutput)
	if err != nil {
		return fmt.Errorf("failed to open log output: %w", err)
	}
	if level == logging.LvlDebug {
		handler = logging.CallerFileHandler(handler)
	}

	common.SetLogging(log, level, handler)
	api.SetLogging(level, handler)
	engine.SetLogging(level, handler)
	ledger.SetLogging(level, handler)
	metadata.SetLogging(level, handler)
	pinning.SetLogging(level, handler)
	registry.SetLogging(level, handler)
	service.SetLogging(level, handler)
	storage.SetLogging(level, handler)

	return nil
}
