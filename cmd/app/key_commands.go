package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/identity/cmd/app/commands"
	cryptoService "github.com/allisson/identity/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-pii-key",
			Usage: "Generate a new PII encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI used to wrap the key (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreatePIIKey(
					ctx,
					cryptoService.NewKeyLoader(),
					commands.Output(),
					cmd.String("kms-key-uri"),
				)
			},
		},
		{
			Name:  "mask",
			Usage: "Mask a value the way PII is masked in responses and logs",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Value to mask",
				},
				&cli.IntFlag{
					Name:  "visible",
					Value: -1,
					Usage: "Number of trailing characters left visible (default 4)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cipher, err := cryptoService.NewSecretCipher(nil)
				if err != nil {
					return err
				}
				return commands.RunMask(
					cipher,
					commands.Output(),
					cmd.String("value"),
					int(cmd.Int("visible")),
				)
			},
		},
	}
}
