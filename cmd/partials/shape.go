package main

import (
	"fmt"
	"strings"

	"github.com/gordian-engine/partials/proof"
	"github.com/spf13/cobra"
)

func (c *cli) newHeightCommand() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "height",
		Short: "Print the tree height of the schema's root type.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := c.loadSchema(schemaPath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, s.Root.Height())
			return err
		},
	}
	schemaFlag(cmd, &schemaPath)
	return cmd
}

func (c *cli) newResolveCommand() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "resolve PATH...",
		Short: "Print the node descriptor of each path.",
		Long: `Resolve each slash-separated path against the schema's root type.
Numeric segments select elements and other segments select fields;
"len" selects a list's length.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := c.loadSchema(schemaPath)
			if err != nil {
				return err
			}
			paths, err := parsePaths(args)
			if err != nil {
				return err
			}
			for _, p := range paths {
				n, err := s.Root.GetNode(p)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", p, err)
				}
				if _, err := fmt.Fprintf(c.stdout, "%s\t%s\n", p, formatNode(n)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	schemaFlag(cmd, &schemaPath)
	return cmd
}

func (c *cli) newLeavesCommand() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "leaves PATH...",
		Short: "Print the leaf and helper indices a proof of the paths needs.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			s, err := c.loadSchema(schemaPath)
			if err != nil {
				return err
			}
			paths, err := parsePaths(args)
			if err != nil {
				return err
			}

			leaves, err := proof.RequiredLeaves(s.Root, paths...)
			if err != nil {
				return err
			}
			helpers := proof.CoveringIndices(leaves)

			_, err = fmt.Fprintf(
				c.stdout, "leaves:\t%s\nhelpers:\t%s\n",
				joinIndices(leaves), joinIndices(helpers),
			)
			return err
		},
	}
	schemaFlag(cmd, &schemaPath)
	return cmd
}

func joinIndices(idxs []uint64) string {
	var b strings.Builder
	for i, idx := range idxs {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, idx)
	}
	return b.String()
}
