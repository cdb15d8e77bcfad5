package command

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/cli/output"
	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/pkg/token"
)

// defaultMasterBytes is the size of a generated master secret.
const defaultMasterBytes = 32

// randReader is the entropy source for "secret generate".
var randReader io.Reader = rand.Reader

// SecretCommand returns the secret subcommand group.
func SecretCommand() *cli.Command {
	derivedFlag := &cli.BoolFlag{
		Name:  "derived",
		Usage: "Also print the primary and secondary secrets derived from the master",
	}

	return &cli.Command{
		Name:  "secret",
		Usage: "Create and derive secret material",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a random master secret",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "bytes",
						Value: defaultMasterBytes,
						Usage: "Master secret size in bytes",
					},
					derivedFlag,
				},
				Action: secretGenerate,
			},
			{
				Name:  "derive",
				Usage: "Derive a master secret from a passphrase",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "passphrase",
						Usage:    "Passphrase to stretch",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "salt",
						Usage:    "Salt, at least 8 bytes",
						Required: true,
					},
					derivedFlag,
				},
				Action: secretDerive,
			},
		},
	}
}

// secretView is printed by the secret commands. It is the only place the
// CLI shows secret material, so it is never logged.
type secretView struct {
	Master    string `json:"master" yaml:"master"`
	Primary   string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Secondary string `json:"secondary,omitempty" yaml:"secondary,omitempty"`
}

func secretGenerate(c *cli.Context) error {
	n := c.Int("bytes")
	if n < domain.MinMasterLength {
		return domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("--bytes must be at least %d", domain.MinMasterLength))
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}

	master, err := token.ReadBytes(randReader, n)
	if err != nil {
		return domain.ErrRandomSource.WithCause(err)
	}

	view, err := newSecretView(master, c.Bool("derived"))
	if err != nil {
		return err
	}
	return rt.render(c, view)
}

func secretDerive(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}

	spinner := output.NewSpinner(c.App.ErrWriter, "Stretching passphrase")
	spinner.Start()
	master, err := domain.StretchPassphrase(c.String("passphrase"), c.String("salt"))
	if err != nil {
		spinner.Fail("Passphrase rejected")
		return err
	}
	spinner.Success("Master secret derived")

	view, err := newSecretView(master, c.Bool("derived"))
	if err != nil {
		return err
	}
	return rt.render(c, view)
}

func newSecretView(master []byte, derived bool) (*secretView, error) {
	view := &secretView{Master: domain.EncodeMaster(master)}
	if !derived {
		return view, nil
	}

	secrets, err := domain.DeriveSecrets(master)
	if err != nil {
		return nil, err
	}
	view.Primary = secrets.Primary
	view.Secondary = secrets.Secondary
	return view, nil
}
