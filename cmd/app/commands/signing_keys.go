package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	keysUseCase "github.com/allisson/authserver/internal/keys/usecase"
)

// RunCreateSigningKey generates a new signing key and prints its id.
func RunCreateSigningKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	summary, err := keyUseCase.Create(ctx)
	if err != nil {
		return fmt.Errorf("failed to create signing key: %w", err)
	}

	logger.Info("signing key created", slog.String("key_id", summary.ID))

	if format == "json" {
		return writeJSON(writer, summary)
	}
	_, err = fmt.Fprintf(writer, "Created signing key %s (%s, issued %s)\n", summary.ID, summary.Algorithm, summary.IssueDate)
	return err
}

// RunListSigningKeys prints every signing key in storage order.
func RunListSigningKeys(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	keys, err := keyUseCase.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list signing keys: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{"data": keys})
	}

	if len(keys) == 0 {
		_, err = fmt.Fprintln(writer, "No signing keys found")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tALGORITHM\tISSUE DATE")
	for _, key := range keys {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", key.ID, key.Algorithm, key.IssueDate)
	}
	return tw.Flush()
}

// RunDeleteSigningKey deletes the key with keyID. The last remaining key cannot be deleted.
func RunDeleteSigningKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if keyID == "" {
		return fmt.Errorf("key id is required")
	}

	deleted, err := keyUseCase.Delete(ctx, keyID)
	if err != nil {
		return fmt.Errorf("failed to delete signing key: %w", err)
	}

	return outputDeletedKey(logger, writer, deleted, format)
}

// RunDeleteOldestSigningKey deletes the key with the earliest issue date.
func RunDeleteOldestSigningKey(
	ctx context.Context,
	keyUseCase keysUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	deleted, err := keyUseCase.DeleteOldest(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete oldest signing key: %w", err)
	}

	return outputDeletedKey(logger, writer, deleted, format)
}

func outputDeletedKey(logger *slog.Logger, writer io.Writer, keyID, format string) error {
	logger.Info("signing key deleted", slog.String("key_id", keyID))

	if format == "json" {
		return writeJSON(writer, map[string]string{"id": keyID})
	}
	_, err := fmt.Fprintf(writer, "Deleted signing key %s\n", keyID)
	return err
}
