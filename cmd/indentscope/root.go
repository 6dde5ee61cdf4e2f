package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/config"
	"github.com/dshills/indentscope/internal/config/layer"
	"github.com/dshills/indentscope/internal/logging"
	"github.com/dshills/indentscope/internal/plugin/lua"
)

// envPrefix prefixes every environment variable read by the CLI.
const envPrefix = "INDENTSCOPE"

// fileLogging marks commands that own the terminal and log to a file.
const fileLogging = "file-logging"

// cli holds the state shared by all commands of one invocation.
type cli struct {
	v      *viper.Viper
	logger *zap.Logger
	cfg    *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New(), logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "indentscope",
		Short: "Indent scope resolution and animated scope markers",
		Long: `indentscope finds the indent scope around a position in a text file: the
run of lines indented at least as deep as the reference line, and the
border lines just outside it.

Settings come from builtin defaults, a config file (TOML, YAML or Lua),
INDENTSCOPE_* environment variables and flags, in increasing priority.
Nested keys use underscores in variable names, e.g.
INDENTSCOPE_DRAW_ANIMATION_SHAPE=cubic.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default: <user config dir>/indentscope/config.{toml,yaml,yml,lua})")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-file", filepath.Join(os.TempDir(), "indentscope.log"), "log file for the viewer")
	flags.String("border", "", "border policy (both, top, bottom, none)")
	flags.Int("delay", 0, "delay in milliseconds before a scope is drawn")

	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()
	_ = c.v.BindPFlag("config", flags.Lookup("config"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = c.v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = c.v.BindPFlag("options.border", flags.Lookup("border"))
	_ = c.v.BindPFlag("draw.delay", flags.Lookup("delay"))

	cmd.AddCommand(
		newScopeCmd(c),
		newTimingCmd(c),
		newScanCmd(c),
		newViewCmd(c),
	)
	return cmd
}

// setup builds the logger and the configuration for cmd.
func (c *cli) setup(cmd *cobra.Command) error {
	level := c.v.GetString("log_level")
	opts := logging.Options{Level: level, Console: cmd.ErrOrStderr()}
	if cmd.Annotations[fileLogging] == "true" {
		opts = logging.FileOptions(level, c.v.GetString("log_file"))
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}
	c.logger = logger

	c.cfg = config.New(
		config.WithLogger(logger),
		config.WithScriptLoader(".lua", func(path string) (map[string]any, error) {
			return lua.Configure(path)
		}),
	)

	path := c.v.GetString("config")
	if path == "" {
		path = defaultConfigFile()
	}
	if path != "" {
		if err := c.cfg.LoadFile(path); err != nil {
			return err
		}
	}
	return c.cfg.SetArgs(c.args())
}

// args collects the settings given through flags and environment.
func (c *cli) args() map[string]any {
	keys := make([]string, 0)
	for key := range layer.FlattenMap(config.Defaults()) {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make(map[string]any)
	for _, key := range keys {
		if c.v.IsSet(key) {
			args[key] = c.v.Get(key)
		}
	}
	return args
}

// defaultConfigFile returns the first existing config file in the user
// config directory.
func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.lua"} {
		path := filepath.Join(dir, "indentscope", name)
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, os.ErrNotExist) {
			return ""
		}
	}
	return ""
}
