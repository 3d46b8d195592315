package modules

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/symbols"
)

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	root := t.TempDir()
	s := config.DefaultSettings()
	s.ModuleRoot = root
	return NewCache(s), root
}

func TestResolveAddsExtension(t *testing.T) {
	c, root := newTestCache(t)
	key, err := c.Resolve("lib/math")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lib", "math.er"), key)

	again, err := c.Resolve("./lib/../lib/math.er")
	require.NoError(t, err)
	assert.Equal(t, key, again)

	_, err = c.Resolve("")
	assert.Error(t, err)
}

func TestRegisterLookup(t *testing.T) {
	c, _ := newTestCache(t)
	require.NoError(t, c.Register("b", 3))
	require.NoError(t, c.Register("a.er", 2))

	id, ok := c.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, symbols.ScopeID(2), id)
	_, ok = c.Lookup("missing")
	assert.False(t, ok)

	paths := c.Paths()
	require.Len(t, paths, 2)
	assert.Equal(t, "a.er", filepath.Base(paths[0]))
	assert.Equal(t, "b.er", filepath.Base(paths[1]))
}

func TestOpenCreatesModuleOnce(t *testing.T) {
	c, _ := newTestCache(t)
	tree := symbols.NewTree(0)

	id, err := c.Open(tree, symbols.NoScope, "util")
	require.NoError(t, err)
	assert.Equal(t, "util", tree.Get(id).Name)
	assert.Equal(t, symbols.KindModule, tree.Get(id).Kind)

	again, err := c.Open(tree, symbols.NoScope, "util.er")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, 1, c.Len())
}

func TestRelativeImportFollowsImporter(t *testing.T) {
	c, root := newTestCache(t)
	tree := symbols.NewTree(0)

	lib, err := c.Open(tree, symbols.NoScope, "lib/math")
	require.NoError(t, err)

	vec, err := c.Open(tree, lib, "./vec")
	require.NoError(t, err)
	want := filepath.Join(root, "lib", "vec.er")
	assert.Equal(t, []string{filepath.Join(root, "lib", "math.er"), want}, c.Paths())

	same, err := c.Open(tree, symbols.NoScope, "lib/vec")
	require.NoError(t, err)
	assert.Equal(t, vec, same)

	top, err := c.Open(tree, lib, "vec")
	require.NoError(t, err)
	assert.NotEqual(t, vec, top, "paths without a dot start at the module root")

	key, err := c.ResolveFrom(symbols.NoScope, "./vec")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "vec.er"), key)
}
