package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/inbox-triage/internal/app"
	"github.com/nhle/inbox-triage/internal/backend"
	"github.com/nhle/inbox-triage/internal/credential"
	"github.com/nhle/inbox-triage/internal/logging"
	"github.com/nhle/inbox-triage/internal/model"
)

type options struct {
	configPath string
	baseURL    string
	debug      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := pflag.NewFlagSet("inboxtriage", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the YAML configuration file")
	fs.StringVar(&opts.baseURL, "base-url", "", "backend root URL, overrides backend.base_url")
	fs.BoolVar(&opts.debug, "debug", false, "log at debug level")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts options) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		cfg.Backend.BaseURL = opts.baseURL
		cfg.Normalize()
	}
	return cfg, nil
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log, opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	creds, err := credential.Open()
	if err != nil {
		log.Warn("keyring unavailable, tokens will not persist", zap.Error(err))
		creds = nil
	}
	token, err := credential.BackendToken(creds)
	if err != nil {
		log.Warn("reading backend token failed", zap.Error(err))
	}

	client, err := backend.NewClient(cfg.Backend, token, log)
	if err != nil {
		return err
	}

	log.Info("starting",
		zap.String("config", opts.configPath),
		zap.String("base_url", cfg.Backend.BaseURL),
		zap.Int("batch_size", cfg.Backend.BatchSize),
	)

	m := app.New(app.Deps{
		Config:      cfg,
		ConfigPath:  opts.configPath,
		Client:      client,
		Token:       token,
		Credentials: creds,
		Log:         log,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
