package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func GenerateCmd() *cobra.Command {
	opts := &runOptions{}
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the admin configuration for the entities of a metadata document",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			doc, err := s.generator.Build(ctx, s.definitions)
			if err != nil {
				return err
			}

			rendered, err := s.generator.Render(ctx, doc)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(rendered)
				return err
			}

			if err := os.WriteFile(out, rendered, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			stderr := cmd.ErrOrStderr()
			for _, name := range doc.Names() {
				entity := doc[name]
				rels := len(entity.RelationshipFields())
				marker := color.New(color.FgGreen).Sprint("✓")
				if entity.HasRelationships && rels == 0 {
					marker = color.New(color.FgYellow).Sprint("!")
				}
				fmt.Fprintf(stderr, "  %s %-24s %2d fields, %d relationships\n", marker, name, len(entity.Fields), rels)
			}
			fmt.Fprintf(stderr, "Wrote %s (%s)\n", color.New(color.FgCyan).Sprint(out), s.cfg.Format)
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, stdout when empty")
	return cmd
}
