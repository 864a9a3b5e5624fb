// Package main implements modmux, the operator tool for the session
// mediation core of the proxy. It classifies compliance capture rules,
// replays scripted sessions against a headless multiplexer and manages the
// configuration file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/modmux/internal/config"
	"github.com/Gaurav-Gosain/modmux/internal/mux"
	"github.com/Gaurav-Gosain/modmux/internal/tape"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode  bool
	configFile string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "modmux",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "modmux",
		Short: "Session module multiplexer tooling",
		Long: `modmux - session module multiplexer tooling

Inspects compliance capture rules, replays scripted client input against a
headless session and manages the configuration shared by both.`,
		Example: `  # Classify a capture rule
  modmux classify '$kbd:gpedit\x01$ocr:Admin'

  # Watch the configured capture rules
  modmux policy --watch

  # Replay a session script and show the final screen
  modmux replay session.tape --preview

  # List intercepted keys
  modmux keys`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debugMode {
				setLogLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default is the user config path)")

	// Classify command variables
	var classifyFormat string
	var classifyLint, classifyStdin bool

	classifyCmd := &cobra.Command{
		Use:   "classify [rule...]",
		Short: "Decide which capture types a rule triggers",
		Long: `Decide whether capture rules need keyboard capture, OCR capture, or both

Each argument is one rule string. Segments are separated by the \x01 byte,
which may be written literally as the four characters \x01.`,
		Example: `  # One rule with two segments
  modmux classify '$kbd:gpedit\x01$ocr:Admin'

  # Rules read line by line, reported as YAML
  modmux classify --stdin --format yaml < rules.txt

  # Also report suspicious tags
  modmux classify --lint '$kdb:gpedit'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := args
			if classifyStdin {
				lines, err := readRules(cmd.InOrStdin())
				if err != nil {
					return err
				}
				rules = append(rules, lines...)
			}
			return runClassify(cmd.OutOrStdout(), rules, classifyFormat, classifyLint)
		},
	}

	classifyCmd.Flags().StringVarP(&classifyFormat, "format", "f", "table", "Output format: table, yaml or json")
	classifyCmd.Flags().BoolVar(&classifyLint, "lint", false, "Report unknown tags and untyped segments")
	classifyCmd.Flags().BoolVar(&classifyStdin, "stdin", false, "Read rules from stdin, one per line")

	var policyWatch bool

	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Evaluate the configured capture rules",
		Long: `Evaluate the [capture] section of the configuration file

With --watch the rules are evaluated again every time the file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPolicy(cmd.Context(), cmd.OutOrStdout(), policyWatch)
		},
	}

	policyCmd.Flags().BoolVarP(&policyWatch, "watch", "w", false, "Re-evaluate when the config file changes")

	// Replay command variables
	var replayOpts replayOptions

	replayCmd := &cobra.Command{
		Use:   "replay <script.tape>",
		Short: "Run a session script against a headless session",
		Long: `Run a session script against a headless session

The session uses the screen, OSD and keyboard settings of the configuration
file. Every executed command is printed; the run stops at the first failed
Expect.`,
		Example: `  # Replay with virtual time
  modmux replay login.tape

  # Honor Sleep and delays on the wall clock
  modmux replay login.tape --realtime

  # Print a 100 column preview of the final screen
  modmux replay login.tape --preview --cols 100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), cmd.OutOrStdout(), args[0], replayOpts)
		},
	}

	replayCmd.Flags().BoolVar(&replayOpts.Preview, "preview", false, "Print a preview of the final screen")
	replayCmd.Flags().IntVar(&replayOpts.Cols, "cols", 80, "Preview width in terminal cells")
	replayCmd.Flags().BoolVar(&replayOpts.Realtime, "realtime", false, "Wait on the wall clock for Sleep and delays")
	replayCmd.Flags().BoolVarP(&replayOpts.Quiet, "quiet", "q", false, "Do not print executed commands")

	keysCmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"keybinds", "kb"},
		Short:   "List intercepted keys",
		Long:    `Display the keys a session intercepts and the key names scripts and the config accept`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listKeybindings(cmd.OutOrStdout())
		},
	}

	// Config command group
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modmux configuration",
		Long:  `Manage modmux configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		Long:  `Print the path to the modmux configuration file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after defaults are applied and validation passed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout())
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the modmux configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the modmux configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults()
		},
	}

	configCmd.AddCommand(configPathCmd, configShowCmd, configEditCmd, configResetCmd)

	rootCmd.AddCommand(classifyCmd, policyCmd, replayCmd, keysCmd, configCmd)

	// Execute with fang
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
	); err != nil {
		os.Exit(1)
	}
}

// setLogLevel applies level to every package logger.
func setLogLevel(level log.Level) {
	logger.SetLevel(level)
	mux.SetLogLevel(level)
	tape.SetLogLevel(level)
}

// loadConfig loads --config when given, the user config otherwise, and
// applies its log level unless --debug overrides it.
func loadConfig() (*config.Config, string, error) {
	path := configFile
	var cfg *config.Config
	var err error
	if path == "" {
		path, err = config.GetConfigPath()
		if err != nil {
			return nil, "", fmt.Errorf("could not determine config path: %w", err)
		}
		cfg, err = config.LoadUserConfig()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, path, err
	}
	if !debugMode {
		setLogLevel(cfg.LogLevel())
	}
	return cfg, path, nil
}
