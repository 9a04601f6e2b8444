package cli

import (
	"context"
	"fmt"

	"github.com/Wicz-Cloud/pai-note-exporter/config"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
)

// openSession logs in with the configured credentials and returns a
// client carrying the bearer token.
func openSession(ctx context.Context, cfg *config.Config) (*plaud.Client, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	opts := plaud.Options{
		BaseURL:           cfg.BaseURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	}

	anon := plaud.NewClient(opts)

	token, err := anon.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return anon.WithToken(opts, token), nil
}
