package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gordian-engine/partials/chunktree"
	"github.com/gordian-engine/partials/internal/ptest"
	"github.com/gordian-engine/partials/pmerkle/pmsha256"
	"github.com/gordian-engine/partials/pnode"
	"github.com/gordian-engine/partials/proof"
	"github.com/gordian-engine/partials/pschema"
	"github.com/gordian-engine/partials/pwire"
	"github.com/stretchr/testify/require"
)

const testSchema = `
root: State
containers:
  - name: State
    fields:
      - {name: slot, type: uint64}
      - {name: balances, type: "list<uint64, 40>"}
      - {name: latest, type: Checkpoint}
  - name: Checkpoint
    fields:
      - {name: epoch, type: uint64}
      - {name: root, type: "vector<uint8, 32>"}
`

// run executes the root command with args
// and returns what it wrote to stdout and stderr.
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	rc := newRootCommand(&outBuf, &errBuf)
	rc.SetArgs(args)
	err = rc.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeSchema(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(p, []byte(testSchema), 0o600))
	return p
}

func TestHeight(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "height", "--schema", writeSchema(t))
	require.NoError(t, err)
	require.Equal(t, "2\n", out)

	_, _, err = run(t, "height")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "resolve", "-s", writeSchema(t), "slot", "balances/len", "latest", "latest/epoch")
	require.NoError(t, err)
	require.Equal(t, []string{
		"slot\tprimitive index=3 members=[slot@0+8]",
		"balances/len\tlength ident=len index=10",
		"latest\tcomposite ident=latest index=5 height=1",
		"latest/epoch\tprimitive index=11 members=[epoch@0+8]",
	}, strings.Split(strings.TrimSpace(out), "\n"))

	_, _, err = run(t, "resolve", "-s", writeSchema(t), "nope")
	var ip *pnode.InvalidPathError
	require.ErrorAs(t, err, &ip)
}

func TestLeaves(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "leaves", "--schema", writeSchema(t), "latest/epoch")
	require.NoError(t, err)
	require.Equal(t, "leaves:\t11\nhelpers:\t1 6 12\n", out)
}

func TestInspectAndVerify(t *testing.T) {
	t.Parallel()

	schemaPath := writeSchema(t)
	s, err := pschema.Load(schemaPath)
	require.NoError(t, err)

	b, err := chunktree.NewBuilder(s.Root)
	require.NoError(t, err)
	require.NoError(t, b.Set(pnode.Path{pnode.Name("slot")}, []byte{1, 0, 0, 0, 0, 0, 0, 0}))
	require.NoError(t, b.SetLength(pnode.Path{pnode.Name("balances"), pnode.Name("len")}, 3))
	tree := b.Build(pmsha256.Hasher{})

	paths := []pnode.Path{{pnode.Name("slot")}, {pnode.Name("balances"), pnode.Name("len")}}
	pr, err := proof.NewProver(ptest.NewLogger(t), proof.ProverConfig{
		Shape: s.Root,
		Store: tree,
	}).Prove(paths...)
	require.NoError(t, err)

	proofPath := filepath.Join(t.TempDir(), "proof.bin")
	enc, err := pwire.Marshal(pr)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(proofPath, enc, 0o600))

	out, _, err := run(t, "inspect", proofPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, "chunks:\t4", lines[0])
	require.Len(t, lines, 5)
	require.True(t, strings.HasPrefix(lines[1], "2\t"), lines[1])

	root := tree.Root()
	rootHex := hex.EncodeToString(root[:])

	out, stderr, err := run(t, "verify", "--schema", schemaPath, "--root", rootHex, proofPath, "slot", "balances/len")
	require.NoError(t, err)
	require.Equal(t, "OK\n", out)
	require.Contains(t, stderr, "Proof verified")
	require.NotContains(t, stderr, "Loaded schema")

	_, stderr, err = run(t, "-v", "verify", "--schema", schemaPath, "--root", rootHex, proofPath, "slot")
	require.NoError(t, err)
	require.Contains(t, stderr, "Loaded schema")

	_, _, err = run(t, "verify", "--schema", schemaPath, "--root", rootHex, "--hash", "blake3", proofPath, "slot")
	require.ErrorIs(t, err, proof.ErrRootMismatch)

	// The proof does not reveal the epoch.
	_, _, err = run(t, "verify", "--schema", schemaPath, "--root", rootHex, proofPath, "latest/epoch")
	require.ErrorIs(t, err, proof.ErrMissingLeaf)

	_, _, err = run(t, "verify", "--schema", schemaPath, "--root", "abcd", proofPath, "slot")
	require.Error(t, err)

	_, _, err = run(t, "verify", "--schema", schemaPath, "--root", rootHex, "--hash", "md5", proofPath, "slot")
	require.Error(t, err)
}
