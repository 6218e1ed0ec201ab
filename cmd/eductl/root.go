package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/session"
)

const defaultAPITimeout = 10 * time.Second

type rootOptions struct {
	ConfigPath  string
	SessionPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "eductl",
		Short:         "Browse and seed the LearnHub catalog from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadEnv(".env")
		},
	}
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "configs/config.yaml", "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.SessionPath, "session", defaultSessionPath(), "file holding the saved login")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newBrowseCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".eductl-session.json"
	}
	return filepath.Join(dir, "eductl", "session.json")
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.ConfigPath)
}

func newAPIClient(cfg *config.Config) (*apiclient.Client, error) {
	return apiclient.New(cfg.API.BaseURL, apiclient.WithTimeout(config.Duration(cfg.API.Timeout, defaultAPITimeout)))
}

// signedInClient returns an API client carrying the token of the saved login.
func (o *rootOptions) signedInClient(cfg *config.Config) (*apiclient.Client, error) {
	s, err := session.LoadFile(o.SessionPath, time.Now())
	if errors.Is(err, session.ErrNotFound) {
		return nil, errors.New(`not signed in: run "eductl login" first`)
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	c, err := newAPIClient(cfg)
	if err != nil {
		return nil, err
	}
	return c.WithToken(s.Token), nil
}
