package app

import (
	"context"
	"fmt"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
)

// ExecuteTokenCommand prints a valid bearer token, logging in only when the cached one has expired.
func ExecuteTokenCommand(ctx context.Context, cfg *config.Config, asHeader bool) {
	if err := mustRunner(ctx, cfg).PrintToken(ctx, asHeader); err != nil {
		logger.Fatalf(ctx, "Failed to get token: %v", err)
	}
}

// PrintToken writes a valid token to stdout, optionally as an Authorization header line.
func (r *Runner) PrintToken(ctx context.Context, asHeader bool) error {
	token, err := r.cache.GetTokenWithRenewal(ctx, r.credential)
	if err != nil {
		return err
	}

	if asHeader {
		_, err = fmt.Fprintf(r.stdout, "Authorization: Bearer %s\n", token)
	} else {
		_, err = fmt.Fprintln(r.stdout, token)
	}

	if err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}

	return nil
}
