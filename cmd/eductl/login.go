package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/session"
)

// passwordEnv is read when --password is not given, before prompting.
const passwordEnv = "EDUCTL_PASSWORD"

type loginOptions struct {
	Email    string
	Password string
}

func newLoginCmd(root *rootOptions) *cobra.Command {
	var opts loginOptions

	cmd := &cobra.Command{
		Use:   "login --email <email>",
		Short: "Sign in to the catalog API and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email := strings.TrimSpace(opts.Email)
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := resolvePassword(opts.Password, cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			s, err := client.Login(ctx, email, password)
			if err != nil {
				if domain.IsUnauthorized(err) {
					return errors.New("invalid email or password")
				}
				return fmt.Errorf("login: %w", err)
			}
			if err := session.SaveFile(root.SessionPath, s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s) until %s\n",
				s.Name, strings.Join(s.Roles, ", "), s.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (default $"+passwordEnv+", then prompt)")
	return cmd
}

func newLogoutCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			cfg, err := root.loadConfig()
			if err == nil {
				err = root.revokeSavedLogin(ctx, cfg)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Could not revoke the token: %v\n", err)
			}

			if err := os.Remove(root.SessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// revokeSavedLogin asks the API to revoke the token of the saved login.
// Having no saved login is not an error.
func (o *rootOptions) revokeSavedLogin(ctx context.Context, cfg *config.Config) error {
	s, err := session.LoadFile(o.SessionPath, time.Now())
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	c, err := newAPIClient(cfg)
	if err != nil {
		return err
	}
	return c.Logout(ctx, s.Token)
}

// resolvePassword prefers the flag, then the environment, then one line
// read from in.
func resolvePassword(flag string, in io.Reader, prompt io.Writer) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv(passwordEnv); v != "" {
		return v, nil
	}
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
