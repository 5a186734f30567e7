package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bat-ads/internal/adapter/issuer"
	"bat-ads/internal/config/configs"
	"bat-ads/internal/privacy/cbr"
)

var issuerCmd = &cobra.Command{
	Use:   "issuer",
	Short: "Run a local ad server that issues and redeems confirmation tokens",
	Long: `issuer runs an in-memory ad server speaking the /v3 confirmation API.
Signing keys are read from ISSUER_CONFIRMATION_KEY and ISSUER_PAYMENT_KEY
(base64) and generated when unset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetUint16("port")
		logger := newLogger(configs.Logger{Level: os.Getenv("LOG_LEVEL"), Format: os.Getenv("LOG_FORMAT")})

		confKey, err := signingKey("ISSUER_CONFIRMATION_KEY", logger)
		if err != nil {
			return err
		}
		payKey, err := signingKey("ISSUER_PAYMENT_KEY", logger)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           issuer.New(confKey, payKey, logger).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		go func() {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				logger.Error("issuer shutdown error", slog.Any("error", err))
			}
		}()

		logger.Info("issuer listening", slog.Int("port", int(port)))
		if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	issuerCmd.Flags().Uint16P("port", "p", 8090, "Port to listen on")
	rootCmd.AddCommand(issuerCmd)
}

func signingKey(env string, logger *slog.Logger) (cbr.SigningKey, error) {
	if s := os.Getenv(env); s != "" {
		k, err := cbr.DecodeSigningKey(s)
		if err != nil {
			return cbr.SigningKey{}, fmt.Errorf("%s: %w", env, err)
		}
		return k, nil
	}
	k, err := cbr.GenerateSigningKey()
	if err != nil {
		return cbr.SigningKey{}, err
	}
	logger.Info("generated signing key", slog.String("env", env), slog.String("public_key", k.PublicKey().EncodeBase64()))
	return k, nil
}
