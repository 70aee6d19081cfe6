package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authserver/cmd/app/commands"
	"github.com/allisson/authserver/internal/app"
	"github.com/allisson/authserver/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Create a user that can log in with a password",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "tenant-id",
					Aliases: []string{"t"},
					Usage:   "Tenant the user belongs to (multi-tenant deployments)",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Email address",
				},
				&cli.StringFlag{
					Name:    "username",
					Aliases: []string{"u"},
					Usage:   "Optional username",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Initial password (prefer --password-stdin)",
				},
				&cli.BoolFlag{
					Name:  "password-stdin",
					Usage: "Read the initial password from stdin",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userUseCase, err := container.UserUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateUser(
					ctx,
					userUseCase,
					container.Logger(),
					commands.DefaultIO(),
					commands.CreateUserParams{
						TenantID:      cmd.String("tenant-id"),
						Email:         cmd.String("email"),
						Username:      cmd.String("username"),
						Password:      cmd.String("password"),
						PasswordStdin: cmd.Bool("password-stdin"),
						Format:        cmd.String("format"),
					},
				)
			},
		},
	}
}
