package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gordian-engine/partials/pmerkle"
	"github.com/gordian-engine/partials/pmerkle/pmblake3"
	"github.com/gordian-engine/partials/pmerkle/pmsha256"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/pschema"
	"github.com/spf13/cobra"
)

// cli holds state shared by every subcommand.
type cli struct {
	stdout, stderr io.Writer

	verbose bool
	log     *slog.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	rc := &cobra.Command{
		Use:   "partials",
		Short: "Resolve generalized indices and check partial Merkle proofs.",
		Long: `partials resolves paths against a shape declared in a YAML schema,
reports the chunks a proof over those paths must carry,
and decodes and verifies encoded proofs.`,

		SilenceUsage: true,

		PersistentPreRun: func(*cobra.Command, []string) {
			lvl := slog.LevelInfo
			if c.verbose {
				lvl = slog.LevelDebug
			}
			c.log = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{
				Level: lvl,
			}))
		},
	}
	rc.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	rc.AddCommand(
		c.newHeightCommand(),
		c.newResolveCommand(),
		c.newLeavesCommand(),
		c.newInspectCommand(),
		c.newVerifyCommand(),
	)

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func (c *cli) loadSchema(path string) (*pschema.Schema, error) {
	if path == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	s, err := pschema.Load(path)
	if err != nil {
		return nil, err
	}
	c.log.Debug(
		"Loaded schema",
		"path", path,
		"root", s.Root,
		"height", s.Root.Height(),
		"n_containers", len(s.Containers),
	)
	return s, nil
}

func parsePaths(args []string) ([]pnode.Path, error) {
	out := make([]pnode.Path, len(args))
	for i, a := range args {
		p, err := pnode.ParsePath(a)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func hasherByName(name string) (pmerkle.Hasher, error) {
	switch name {
	case "sha256":
		return pmsha256.Hasher{}, nil
	case "blake3":
		return pmblake3.Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown hash %q (want sha256 or blake3)", name)
	}
}

// formatNode renders a descriptor on a single line.
func formatNode(n pnode.Node) string {
	switch n := n.(type) {
	case pnode.PrimitiveSet:
		s := fmt.Sprintf("primitive index=%d members=[", n.NodeIndex())
		for i, p := range n {
			if i > 0 {
				s += " "
			}
			s += fmt.Sprintf("%s@%d+%d", p.Ident, p.Offset, p.Size)
		}
		return s + "]"
	case pnode.Composite:
		return fmt.Sprintf("composite ident=%s index=%d height=%d", n.Ident, n.Index, n.Height)
	case pnode.Length:
		return fmt.Sprintf("length ident=%s index=%d", n.Ident, n.Index)
	default:
		panic(fmt.Errorf("BUG: unknown node type %T", n))
	}
}

// schemaFlag registers the --schema flag on cmd.
func schemaFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "schema", "s", "", "path to the YAML schema file")
}
