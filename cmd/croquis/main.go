// Command croquis transcribes recordings and exports them as speech
// datasets of aligned clips and text.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/chaz8081/croquis/internal/config"
	"github.com/chaz8081/croquis/internal/logger"
)

// configKey is the flag annotation naming the config key a flag overrides.
const configKey = "croquis/config-key"

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	configPath string
	envFile    string
	sets       []string

	cfg *config.Config
	log zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "croquis",
		Short:         "Turn recordings into transcribed speech datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to config file (default: ~/.config/croquis/config.yaml if present)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading config")
	pf.StringArrayVar(&a.sets, "set", nil, "override a config key, e.g. --set dataset.pad_ms=100 (repeatable)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	bind(pf, "log-level", "log_level")
	bind(pf, "log-format", "log_format")

	root.AddCommand(
		newTranscribeCmd(a),
		newExportCmd(a),
		newCropCmd(a),
		newRecordCmd(a),
		newModelCmd(a),
		newConfigCmd(a),
		newScoreCmd(a),
		newStrategiesCmd(),
	)
	return root
}

// bind marks flag as overriding the dotted config key when set.
func bind(fs *pflag.FlagSet, flag, key string) {
	if err := fs.SetAnnotation(flag, configKey, []string{key}); err != nil {
		panic(err)
	}
}

// load resolves config from file, env and flags, then builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	overrides, err := config.ParseOverrides(a.sets)
	if err != nil {
		return err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if keys := f.Annotations[configKey]; len(keys) == 1 {
			overrides[keys[0]] = f.Value.String()
		}
	})

	path := a.configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			path = config.DefaultConfigPath()
		}
	}
	cfg, err := config.LoadWithOverrides(path, overrides)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{
		Level:  config.ParseLogLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	if path != "" {
		a.log.Debug().Str(logger.FieldPath, path).Msg("config loaded")
	}
	return nil
}
