package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/proof"
	"github.com/gordian-engine/partials/pwire"
	"github.com/spf13/cobra"
)

func (c *cli) readProof(path string) (proof.Proof, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return proof.Proof{}, fmt.Errorf("failed to read proof: %w", err)
	}
	p, err := pwire.Unmarshal(b)
	if err != nil {
		return proof.Proof{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	c.log.Debug("Read proof", "path", path, "n_bytes", len(b), "n_chunks", p.Len())
	return p, nil
}

func (c *cli) newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the chunks of an encoded proof.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := c.readProof(args[0])
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(c.stdout, "chunks:\t%d\n", p.Len()); err != nil {
				return err
			}
			for _, idx := range p.Indices() {
				ch := p.Chunks[idx]
				if _, err := fmt.Fprintf(c.stdout, "%d\t%s\n", idx, hex.EncodeToString(ch[:])); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (c *cli) newVerifyCommand() *cobra.Command {
	var (
		schemaPath string
		rootHex    string
		hashName   string
	)
	cmd := &cobra.Command{
		Use:   "verify FILE PATH...",
		Short: "Verify that an encoded proof proves the paths against a root.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			h, err := hasherByName(hashName)
			if err != nil {
				return err
			}
			root, err := parseChunk(rootHex)
			if err != nil {
				return fmt.Errorf("invalid --root: %w", err)
			}
			s, err := c.loadSchema(schemaPath)
			if err != nil {
				return err
			}
			paths, err := parsePaths(args[1:])
			if err != nil {
				return err
			}
			p, err := c.readProof(args[0])
			if err != nil {
				return err
			}

			if err := proof.VerifyPaths(h, s.Root, p, root, paths...); err != nil {
				return err
			}
			c.log.Info("Proof verified", "n_paths", len(paths), "n_chunks", p.Len(), "hash", hashName)
			_, err = fmt.Fprintln(c.stdout, "OK")
			return err
		},
	}
	schemaFlag(cmd, &schemaPath)
	cmd.Flags().StringVar(&rootHex, "root", "", "expected root chunk, hex encoded")
	cmd.Flags().StringVar(&hashName, "hash", "sha256", "node hash: sha256 or blake3")
	return cmd
}

func parseChunk(s string) (pnode.Chunk, error) {
	var c pnode.Chunk
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, err
	}
	if len(b) != pnode.ChunkSize {
		return c, fmt.Errorf("got %d bytes, want %d", len(b), pnode.ChunkSize)
	}
	copy(c[:], b)
	return c, nil
}
