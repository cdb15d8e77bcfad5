package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/core/domain"
)

// InviteCommand returns the invite subcommand group.
func InviteCommand() *cli.Command {
	return &cli.Command{
		Name:  "invite",
		Usage: "Convert between user IDs and invite codes",
		Subcommands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"gen"},
				Usage:     "Generate invite codes for user IDs",
				ArgsUsage: "ID...",
				Action:    inviteGenerate,
			},
			{
				Name:      "parse",
				Usage:     "Recover user IDs from invite codes",
				ArgsUsage: "CODE...",
				Action:    inviteParse,
			},
			{
				Name:      "check",
				Usage:     "Check invite codes are well formed",
				ArgsUsage: "CODE...",
				Action:    inviteCheck,
			},
		},
	}
}

type inviteRow struct {
	ID   uint64 `json:"id" yaml:"id"`
	Code string `json:"code" yaml:"code"`
}

type inviteCheckRow struct {
	Code  string `json:"code" yaml:"code"`
	Valid bool   `json:"valid" yaml:"valid"`
}

func inviteGenerate(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return domain.ErrMissingArgument.WithDetails("ID")
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	svc := rt.InviteService()

	rows := make([]inviteRow, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("user ID %q", arg))
		}
		code, err := svc.Generate(c.Context, id)
		if err != nil {
			return err
		}
		rows = append(rows, inviteRow{ID: id, Code: code})
	}
	return rt.render(c, rows)
}

func inviteParse(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return domain.ErrMissingArgument.WithDetails("CODE")
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	svc := rt.InviteService()

	rows := make([]inviteRow, 0, len(args))
	for _, code := range args {
		id, err := svc.Parse(c.Context, code)
		if err != nil {
			return err
		}
		rows = append(rows, inviteRow{ID: id, Code: code})
	}
	return rt.render(c, rows)
}

func inviteCheck(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return domain.ErrMissingArgument.WithDetails("CODE")
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	svc := rt.InviteService()

	rows := make([]inviteCheckRow, len(args))
	invalid := 0
	for i, code := range args {
		ok := svc.Check(c.Context, code)
		if !ok {
			invalid++
		}
		rows[i] = inviteCheckRow{Code: code, Valid: ok}
	}

	if err := rt.render(c, rows); err != nil {
		return err
	}
	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d codes", ErrNotValid, invalid, len(args))
	}
	return nil
}
