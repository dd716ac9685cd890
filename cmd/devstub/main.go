package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"content-portal/client/internal/config"
	"content-portal/client/internal/devstub"
	"content-portal/client/internal/telemetry"
	otelsetup "content-portal/client/internal/telemetry/otel"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "devstub",
		Short: "Serve the recovery endpoints locally for development",
		Long: `Serve POST /api/Email/SendForgotPasswordEmail and POST /api/Email/ResetPassword
from memory. Accounts come from DEV_STUB_ACCOUNTS; issued codes are logged, and
served on GET /dev/recovery/code when DEV_RETURN_CODE=true. Not for production.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStub(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides DEV_STUB_ADDR)")
	return cmd
}

func runStub(addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.DevStubAddr
	}

	serviceName := cfg.ServiceName
	if serviceName == "recovery-client" {
		serviceName = "recovery-devstub"
	}
	providers, err := otelsetup.NewProviders(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		return err
	}
	providers.SetGlobal()

	accounts := cfg.DevStubAccountsList()
	if len(accounts) == 0 {
		log.Printf("devstub: DEV_STUB_ACCOUNTS is empty; every request will be treated as an unknown account")
	}
	stub := devstub.NewServer(
		devstub.NewMemoryCodeStore(),
		devstub.NewAccountStore(accounts),
		devstub.NewHasher(cfg.BcryptCost),
		devstub.Options{CodeTTL: cfg.CodeTTL(), ReturnCode: cfg.DevReturnCode},
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           stub.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("devstub: listening on %s (%d accounts, dev code retrieval %v)", addr, len(accounts), cfg.DevReturnCode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down dev stub...")
	ctx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownDrainDuration)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("devstub: shutdown: %v", err)
	}
	if err := providers.Shutdown(ctx); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
	log.Println("dev stub stopped")
	return nil
}
