package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/brightstudy/internal/buildinfo"
	"github.com/dmitrijs2005/brightstudy/internal/client/auth"
	"github.com/dmitrijs2005/brightstudy/internal/client/config"
	"github.com/dmitrijs2005/brightstudy/internal/logging"
)

// NewRootCommand builds the command tree. Configuration is read from the
// process environment.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Getenv)
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	var asJSON bool

	root := &cobra.Command{
		Use:           "brightstudy",
		Short:         "Offline learning content sync client",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")

	// withApp loads config, builds the logger and the App, and hands them to fn.
	withApp := func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd.Flags(), getenv)
			if err != nil {
				return err
			}
			log, closer := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
			defer closer.Close()

			ctx := cmd.Context()
			app, err := NewApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			app.out = cmd.OutOrStdout()
			app.reader = bufio.NewReader(cmd.InOrStdin())
			app.asJSON = asJSON
			return fn(ctx, app, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "preview",
			Short: "Show what a sync would install or update",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.Preview(ctx)
			}),
		},
		&cobra.Command{
			Use:     "apply",
			Aliases: []string{"sync"},
			Short:   "Install new and updated content",
			Args:    cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.Apply(ctx)
			}),
		},
		&cobra.Command{
			Use:   "install <kind> <id>",
			Short: "Fetch and install a single item",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *App, args []string) error {
				return a.Install(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "installed",
			Short: "List installed content versions",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.Installed(ctx)
			}),
		},
		&cobra.Command{
			Use:   "lessons",
			Short: "List lessons available offline",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.Lessons(ctx)
			}),
		},
		&cobra.Command{
			Use:   "adapt <lesson_id> <beginner|advance>",
			Short: "Generate an adaptive variant of an installed lesson",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *App, args []string) error {
				return a.Adapt(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and scheduled sync",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				return a.Serve(ctx)
			}),
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
				if !stdinInteractive() {
					return fmt.Errorf("repl needs an interactive terminal")
				}
				a.RunREPL(ctx)
				return nil
			}),
		},
		newDupesCommand(withApp),
		newTokenCommand(getenv),
	)

	return root
}

func newDupesCommand(withApp func(func(context.Context, *App, []string) error) func(*cobra.Command, []string) error) *cobra.Command {
	var apply, yes bool
	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find concept files with identical content",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *App, _ []string) error {
			return a.Dupes(ctx, apply, yes)
		}),
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "delete duplicates and remap lessons")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newTokenCommand(getenv func(string) string) *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(cmd.Flags(), getenv)
			if err != nil {
				return err
			}

			secret := []byte(cfg.APISecret)
			if len(secret) == 0 {
				if !stdinInteractive() {
					return fmt.Errorf("api_secret is not configured")
				}
				if secret, err = GetPassword("API secret", cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			if len(secret) == 0 {
				return fmt.Errorf("api_secret is empty")
			}

			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.TokenTTL
			}
			tok, err := auth.GenerateToken(strings.TrimSpace(operator), secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "operator", "name recorded in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
