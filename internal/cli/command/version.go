package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/keyforge-go/internal/cli/output"
	"github.com/yndnr/keyforge-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
// It does not load the configuration, so it works with a broken one.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			format, err := output.ParseFormat(c.String("output"))
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, buildinfo.String())
				return nil
			}
			return output.NewFormatter(format, false).Format(c.App.Writer, buildinfo.Get())
		},
	}
}
