package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"content-portal/client/internal/config"
	"content-portal/client/internal/recovery/client"
	"content-portal/client/internal/recovery/domain"
	"content-portal/client/internal/recovery/prompt"
	"content-portal/client/internal/recovery/service"
	"content-portal/client/internal/recovery/tui"
	"content-portal/client/internal/telemetry"
	"content-portal/client/internal/telemetry/loki"
	otelsetup "content-portal/client/internal/telemetry/otel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	baseURL string
	email   string
	noTUI   bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Reset a forgotten account password",
		Long: `Request a verification code for your account email, then enter the code
and a new password. On success, continue at the sign-in screen.

The recovery API base URL is read from RECOVERY_API_BASE_URL (or .env) unless
--base-url is given. When stdin is not a terminal, or with --no-tui, values are
read one per line; type .back at any prompt to return to sign in.

Key bindings (terminal UI):
  Tab/Down        Next field
  Shift+Tab/Up    Previous field
  Enter           Submit
  Esc/Ctrl+B      Back to sign in
  Ctrl+C          Quit`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecover(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "recovery API base URL (overrides RECOVERY_API_BASE_URL)")
	cmd.Flags().StringVar(&opts.email, "email", "", "prefill the account email")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "use line prompts even when attached to a terminal")
	return cmd
}

func runRecover(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.baseURL != "" {
		cfg.RecoveryAPIBaseURL = opts.baseURL
	}
	if err := cfg.RequireBaseURL(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry: shutdown: %v", err)
		}
	}()

	emitter, err := otelsetup.NewEventEmitter(providers.LoggerProvider, providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if cfg.LokiURL != "" {
		emitter = telemetry.Fanout(emitter, loki.NewEmitter(cfg.LokiURL, cfg.ServiceName))
	}

	handedOff := false
	ctrl := service.NewController(
		client.NewClient(cfg.RecoveryAPIBaseURL, cfg.RequestTimeout()),
		service.WithEmitter(emitter),
		service.WithSignIn(func() { handedOff = true }),
	)

	out := cmd.OutOrStdout()
	var completed bool
	if !opts.noTUI && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		m := tui.New(ctx, ctrl, opts.email)
		if err := tui.Run(ctx, m, cfg.LogFile); err != nil {
			return err
		}
		completed = m.Completed()
	} else {
		if opts.email != "" {
			ctrl.EditField(domain.FieldEmail, opts.email)
		}
		res, err := prompt.NewRunner(ctrl, cmd.InOrStdin(), out).Run(ctx)
		switch {
		case errors.Is(err, prompt.ErrInputClosed):
			fmt.Fprintln(out, "Recovery cancelled.")
			return nil
		case err != nil:
			return err
		}
		completed = res.Completed
	}

	switch {
	case completed:
		fmt.Fprintln(out, "Password reset. Continue at the sign-in screen.")
	case handedOff:
		fmt.Fprintln(out, "Returned to sign in.")
	default:
		fmt.Fprintln(out, "Recovery cancelled.")
	}
	return nil
}
