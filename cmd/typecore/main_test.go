package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"typecore"}, args...), &stdout, &stderr, false)
	return stdout.String(), stderr.String(), code
}

func TestSortCommand(t *testing.T) {
	out, _, code := runCLI(t, "sort", "Int", "Str", "Nat", "Obj")
	require.Equal(t, 0, code)
	assert.Equal(t, "Nat, Int, Str, Obj\n", out)
}

func TestSupersCommand(t *testing.T) {
	out, _, code := runCLI(t, "supers", "Nat")
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Nat\t"), lines[0])
	assert.Contains(t, out, "Int\t")
}

func TestImplsCommand(t *testing.T) {
	out, _, code := runCLI(t, "impls", "Eq")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Int <: Eq\n")

	_, stderr, code := runCLI(t, "impls", "Int")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not a trait")
}

func TestAttrCommand(t *testing.T) {
	out, _, code := runCLI(t, "attr", "{x: Int}", "x")
	require.Equal(t, 0, code)
	assert.Equal(t, "Int\n", out)

	_, stderr, code := runCLI(t, "attr", "Int", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "nope")
}

func TestCallCommand(t *testing.T) {
	out, _, code := runCLI(t, "call", "concat", "Array(Int, 2)", "Array(Int, 3)")
	require.Equal(t, 0, code)
	assert.Equal(t, "Array(Int, 5)\n", out)

	out, _, code = runCLI(t, "call", "--recv", "Str", "upper")
	require.Equal(t, 0, code)
	assert.Equal(t, "Str\n", out)

	_, stderr, code := runCLI(t, "call", "--kw", "x=Nat", "id")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "missing 1 argument(s): x")

	_, stderr, code = runCLI(t, "call", "concat", "Array(Int, 2)", "Str")
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr)
}

func TestUnknownTypeIsReported(t *testing.T) {
	_, stderr, code := runCLI(t, "sort", "Intt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Intt")
	assert.Contains(t, stderr, "Int")
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typecore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\nsuggestion_distance: 3\n"), 0o644))

	out, _, code := runCLI(t, "--config", path, "config")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "log_level: debug")
	assert.Contains(t, out, "suggestion_distance: 3")

	_, stderr, code := runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "reading settings")
}
