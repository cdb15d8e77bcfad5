package command

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/cli/output"
	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/core/service"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/pkg/apikey"
)

// Verification statuses printed by "apikey verify".
const (
	statusValid     = "valid"
	statusExpired   = "expired"
	statusMalformed = "malformed"
)

// APIKeyCommand returns the apikey subcommand group.
func APIKeyCommand() *cli.Command {
	return &cli.Command{
		Name:    "apikey",
		Aliases: []string{"key"},
		Usage:   "Issue and verify API keys",
		Subcommands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"gen"},
				Usage:   "Issue a new API key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User ID the key is issued for",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "perm",
						Aliases: []string{"p"},
						Usage:   "Permission to grant (read, write, delete, admin); repeatable",
					},
					&cli.IntFlag{
						Name:  "expiry-days",
						Usage: "Days until the key expires (default from codec.default_expiry_days)",
					},
					&cli.BoolFlag{
						Name:  "no-expiry",
						Usage: "Issue a key that never expires",
					},
				},
				Action: apikeyGenerate,
			},
			{
				Name:      "verify",
				Usage:     "Verify API keys",
				ArgsUsage: "TOKEN...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read keys from `FILE`, one per line (- for stdin)",
					},
				},
				Action: apikeyVerify,
			},
			{
				Name:   "layout",
				Usage:  "Show the key field layout",
				Action: apikeyLayout,
			},
			{
				Name:    "permissions",
				Aliases: []string{"perms"},
				Usage:   "List permission names and bits",
				Action:  apikeyPermissions,
			},
		},
	}
}

func apikeyGenerate(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	svc, err := rt.KeyService()
	if err != nil {
		return err
	}

	req := &service.IssueRequest{
		UserID:      c.String("user"),
		Permissions: c.StringSlice("perm"),
		NoExpiry:    c.Bool("no-expiry"),
	}
	if c.IsSet("expiry-days") {
		days := c.Int("expiry-days")
		req.ExpiryDays = &days
	}

	issued, err := svc.Issue(c.Context, req)
	if err != nil {
		return err
	}
	return rt.render(c, issued)
}

// verifyRow is one line of "apikey verify" output.
type verifyRow struct {
	Key         string              `json:"key" yaml:"key"`
	Status      string              `json:"status" yaml:"status"`
	UserIDPart  string              `json:"user_id_part,omitempty" yaml:"user_id_part,omitempty"`
	Permissions []apikey.Permission `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	CreatedAt   *time.Time          `json:"created_at,omitempty" yaml:"created_at,omitempty" table:"wide"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func apikeyVerify(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}

	tokens := c.Args().Slice()
	path := c.String("file")
	if path != "" {
		fromFile, err := readTokens(path, appOptions(c).stdin)
		if err != nil {
			return err
		}
		tokens = append(tokens, fromFile...)
	}
	if len(tokens) == 0 {
		return domain.ErrMissingArgument.WithDetails("TOKEN")
	}

	svc, err := rt.KeyService()
	if err != nil {
		return err
	}

	var bar *output.ProgressBar
	if path != "" {
		bar = output.NewProgressBar(c.App.ErrWriter, "Verifying", "keys")
		bar.SetTotal(int64(len(tokens)))
	}

	rows := make([]verifyRow, 0, len(tokens))
	rejected := 0
	for _, token := range tokens {
		res, err := svc.Verify(c.Context, token)
		row := verifyRow{Key: logger.MaskToken(token)}
		switch {
		case err == nil:
			row.Status = statusValid
		case domain.IsDomainError(err, domain.ErrTokenExpired.Code):
			row.Status = statusExpired
		case domain.IsDomainError(err, domain.ErrTokenMalformed.Code):
			row.Status = statusMalformed
		default:
			return err
		}
		if res != nil {
			created := res.CreatedAt
			row.UserIDPart = res.UserIDPart
			row.Permissions = res.Permissions
			row.CreatedAt = &created
			row.ExpiresAt = res.ExpiresAt
		}
		if row.Status != statusValid {
			rejected++
		}
		rows = append(rows, row)

		if bar != nil {
			bar.Increment(1)
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := rt.render(c, rows); err != nil {
		return err
	}
	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d keys", ErrNotValid, rejected, len(tokens))
	}
	return nil
}

// readTokens reads one key per line, skipping blank lines and # comments.
func readTokens(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails(path).WithCause(err)
		}
		defer f.Close()
		r = f
	}

	var tokens []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens = append(tokens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails(path).WithCause(err)
	}
	return tokens, nil
}

type layoutView struct {
	Fields []apikey.Field `json:"fields" yaml:"fields"`
	Length int            `json:"length" yaml:"length"`
}

func apikeyLayout(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}

	cfg := rt.Config.Codec.APIKeyConfig()
	format, err := rt.outputFormat(c)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return rt.render(c, layoutView{Fields: cfg.Layout(), Length: cfg.ExpectedLength()})
	}

	if err := rt.render(c, cfg.Layout()); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "\nTotal length: %d\n", cfg.ExpectedLength())
	return nil
}

type permissionRow struct {
	Name  string `json:"name" yaml:"name"`
	Bit   int    `json:"bit" yaml:"bit"`
	Value uint64 `json:"value" yaml:"value"`
}

func apikeyPermissions(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}

	perms := apikey.Permissions()
	rows := make([]permissionRow, len(perms))
	for i, p := range perms {
		rows[i] = permissionRow{
			Name:  string(p),
			Bit:   bits.TrailingZeros64(p.Bit()),
			Value: p.Bit(),
		}
	}
	return rt.render(c, rows)
}
