package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skillsync/skillsync/internal/output"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, map[string]string{"version": version})
			}
			fmt.Fprintln(a.stdout, "skillsync", version)
			return nil
		},
	}
}
