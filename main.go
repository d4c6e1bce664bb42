package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"VoiceTasks/config"
	"VoiceTasks/i18n"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagTUI     bool
	flagConfig  string
	flagLang    string
	flagNoVoice bool
)

var rootCmd = &cobra.Command{
	Use:   "voicetasks",
	Short: "Voice-controlled to-do list with a timer",
	Long: `VoiceTasks is a to-do list you can type into or talk to, with a
countdown timer and spoken feedback.

Leave the task or timer field empty and press the button to dictate it.
Settings are read from ~/.config/voicetasks/config.yaml and VOICETASKS_*
environment variables; set GOOGLE_API_KEY to enable speech recognition.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("voicetasks version %s\n", version)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&flagTUI, "tui", false, "Run in the terminal instead of opening a window")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Config file (default ~/.config/voicetasks/config.yaml)")
	rootCmd.Flags().StringVar(&flagLang, "lang", "", "Language for spoken phrases and recognition (en, pt, es, ru)")
	rootCmd.Flags().BoolVar(&flagNoVoice, "no-voice", false, "Disable speech synthesis and recognition")

	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command) error {
	src, err := config.Open(flagConfig)
	if err != nil {
		return err
	}
	cfg := src.Config()

	if cmd.Flags().Changed("tui") {
		cfg.UI.TUI = flagTUI
	}
	if flagNoVoice {
		cfg.Speech.Enabled = false
	}
	switch {
	case flagLang != "":
		i18n.SetLang(flagLang)
	case cfg.Language != "":
		i18n.SetLang(cfg.Language)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := NewAppManager(ctx, cfg)
	defer a.Shutdown()

	src.Watch(a.ApplyConfig)

	return a.Run(ctx, cfg.UI.TUI)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
