package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillsync/skillsync/internal/activation"
	"github.com/skillsync/skillsync/internal/clierr"
	"github.com/skillsync/skillsync/internal/hub"
	"github.com/skillsync/skillsync/internal/importer"
	"github.com/skillsync/skillsync/internal/output"
	"github.com/skillsync/skillsync/internal/registry"
	"github.com/skillsync/skillsync/internal/surface"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR...",
		Short: "Import skills from folders of SKILL.md files",
		Long: `Imports every SKILL.md below each DIR. A skill is named after the folder
holding its SKILL.md; a file nested at least two folders below DIR is
filed under the first folder's name, otherwise under General. Names already
in the registry are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}

			// Every DIR is scanned before anything is saved.
			var files []importer.File
			var empty []string
			for _, dir := range args {
				found, err := importer.ScanDir(dir)
				if err != nil {
					return clierr.Wrap(clierr.InvalidInput, err)
				}
				if len(found) == 0 {
					empty = append(empty, dir)
				}
				files = append(files, found...)
			}
			for _, dir := range empty {
				fmt.Fprintf(a.stderr, "No SKILL.md files found in %s\n", dir)
			}

			total, err := s.Import(cmd.Context(), files)
			if err != nil {
				return err
			}

			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, total)
			}
			fmt.Fprintf(a.stdout, "Imported %d new skills!\n", total.Added)
			if len(total.Skipped) > 0 {
				fmt.Fprintf(a.stderr, "Skipped existing: %s\n", strings.Join(total.Skipped, ", "))
			}
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var grouped bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			view := s.View()

			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, output.Records(view.Skills))
			}
			if grouped {
				output.GroupedList(a.stdout, view.Groups)
				return nil
			}
			output.SkillTable(a.stdout, view.Skills)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&grouped, "grouped", "g", false, "group by category")
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List category labels in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			cats := s.View().Categories
			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, cats)
			}
			output.CategoryList(a.stdout, cats)
			return nil
		},
	}
}

func newCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category NAME [LABEL]",
		Short: "Set a skill's category",
		Long:  `Sets the category of skill NAME. A missing or blank LABEL resets it to General.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			label := ""
			if len(args) == 2 {
				label = args[1]
			}
			if err := s.SetCategory(cmd.Context(), args[0], label); err != nil {
				return err
			}
			label = registry.NormalizeCategory(label)
			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, map[string]string{"name": args[0], "category": label})
			}
			output.Messagef("Moved %s to %s.", args[0], label)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a skill",
		Long:    `Deletes a skill. Prompts for confirmation in interactive mode.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			if !s.Registry().Has(name) {
				return clierr.Newf(clierr.SkillNotFound, "skill not found: %s", name).
					WithDetails(map[string]any{"name": name})
			}
			if !yes {
				if err := a.confirm(fmt.Sprintf("Are you sure you want to delete %q?", name)); err != nil {
					return err
				}
			}
			if err := s.Delete(cmd.Context(), name); err != nil {
				return err
			}
			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, map[string]string{"status": "deleted", "name": name})
			}
			output.Messagef("Deleted %s.", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every skill",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			if !yes {
				if err := a.confirm("Clear all skills?"); err != nil {
					return err
				}
			}
			if err := s.Clear(cmd.Context()); err != nil {
				return err
			}
			if a.format() == output.FormatJSON {
				return output.JSON(a.stdout, map[string]string{"status": "cleared"})
			}
			output.Messagef("Cleared all skills.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string
	var pretty bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the registry as JSON",
		Long: `Writes the full registry as JSON to stdout, or to --out. The file can be
re-imported by pointing the storage path at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSurface(cmd.Context(), surface.Popup, nil, logFile())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return s.Export(a.stdout, pretty)
			}
			f, err := os.Create(out)
			if err != nil {
				return clierr.Wrap(clierr.InvalidInput, err)
			}
			if err := s.Export(f, pretty); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			output.Messagef("Exported %d skills to %s", s.Registry().Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout); "+
		surface.Popup.ExportFilename()+" is the conventional name")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON")
	return cmd
}

func newUseCmd(a *app) *cobra.Command {
	var local, noClipboard bool
	cmd := &cobra.Command{
		Use:   "use NAME",
		Short: "Send a skill to the chat tab",
		Long: `Sends skill NAME to the chat tab through the running hub, opening a new tab
when none is connected. With --local the wrapped text is printed and copied
to the clipboard instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act := a.remoteActivator()
			if local {
				act = activation.ActivatorFunc(func(ctx context.Context, content string) error {
					doc := hub.NewTerminalDocument(a.stdout, nil, !noClipboard)
					return activation.NewInPage(doc, nil, a.logger).Activate(ctx, content)
				})
			}
			s, err := a.openSurface(cmd.Context(), surface.Popup, act, logFile())
			if err != nil {
				return err
			}
			if err := s.Use(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !local {
				output.Messagef("Sent %s.", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "print and copy instead of sending to a tab")
	cmd.Flags().BoolVar(&noClipboard, "no-clipboard", false, "with --local, only print")
	return cmd
}

// confirm asks a y/N question on stdin. A declined prompt exits 1 without
// an error message; a non-terminal stdin is refused rather than guessed.
func (a *app) confirm(question string) error {
	if !a.stdinTTY() {
		return clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprintf(a.stderr, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(a.stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(a.stderr, "Canceled.")
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
