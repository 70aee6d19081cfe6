package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authDomain "github.com/allisson/authserver/internal/auth/domain"
	authUseCase "github.com/allisson/authserver/internal/auth/usecase"
)

// CreateUserParams holds the create-user flags.
type CreateUserParams struct {
	TenantID      string
	Email         string
	Username      string
	Password      string
	PasswordStdin bool
	Format        string
}

// RunCreateUser creates a user. With PasswordStdin the password is read from the first
// line of io.Reader so that it never shows up in the process list or shell history.
func RunCreateUser(
	ctx context.Context,
	userUseCase authUseCase.UserUseCase,
	logger *slog.Logger,
	io IOTuple,
	params CreateUserParams,
) error {
	if err := validateFormat(params.Format); err != nil {
		return err
	}

	password := params.Password
	if params.PasswordStdin {
		if password != "" {
			return fmt.Errorf("--password and --password-stdin are mutually exclusive")
		}
		var err error
		password, err = readLine(io.Reader)
		if err != nil {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
	}

	user, err := userUseCase.Create(ctx, &authDomain.CreateUserInput{
		TenantID: params.TenantID,
		Email:    params.Email,
		Username: params.Username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))

	if params.Format == "json" {
		return writeJSON(io.Writer, map[string]any{
			"id":           user.ID.String(),
			"tenant_id":    user.TenantID,
			"email":        user.Email,
			"username":     user.Username,
			"has_password": user.HasPassword(),
		})
	}

	_, err = fmt.Fprintf(io.Writer, "Created user %s (%s)\n", user.ID, user.Email)
	return err
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
