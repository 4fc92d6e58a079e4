package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"courtmate/backend/internal/config"
)

// NewSheetsService builds a Sheets v4 client. GOOGLE_SHEETS_CREDENTIALS (raw service
// account json) takes precedence; otherwise Application Default Credentials are used.
func NewSheetsService(ctx context.Context, cfg config.Config) (*sheets.Service, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.SheetsCredentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.SheetsCredentials)))
	} else {
		opts = append(opts, credentialOptions()...)
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return svc, nil
}

// NewStorageClient returns a Cloud Storage client for the court snapshot bucket.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	st, err := storage.NewClient(ctx, credentialOptions()...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return st, nil
}
