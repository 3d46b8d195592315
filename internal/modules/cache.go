// Package modules caches the scopes of modules already checked, keyed by
// their resolved file path.
package modules

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/utils"
)

// Cache maps resolved module paths to module scopes. It does not own the
// scopes; they live in the caller's Tree.
type Cache struct {
	root    string
	ext     string
	entries map[string]symbols.ScopeID
	keys    map[symbols.ScopeID]string
}

// NewCache creates a cache resolving relative paths against the
// settings' module root.
func NewCache(settings *config.Settings) *Cache {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	root := settings.ModuleRoot
	if root == "" {
		root = "."
	}
	ext := settings.SourceExt
	if ext == "" {
		ext = config.SourceFileExt
	}
	return &Cache{
		root:    root,
		ext:     ext,
		entries: make(map[string]symbols.ScopeID),
		keys:    make(map[symbols.ScopeID]string),
	}
}

// Resolve turns a module path into the absolute, cleaned cache key.
// Relative paths are taken from the module root.
func (c *Cache) Resolve(path string) (string, error) {
	return c.resolve(c.root, path)
}

// ResolveFrom is Resolve for an import made by the module importer. A
// path starting with a dot is relative to the importer's directory.
func (c *Cache) ResolveFrom(importer symbols.ScopeID, path string) (string, error) {
	base := c.root
	if key, ok := c.keys[importer]; ok {
		base = filepath.Dir(key)
	}
	return c.resolve(base, path)
}

func (c *Cache) resolve(base, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty module path")
	}
	p := utils.WithSourceExt(path, c.ext)
	if !filepath.IsAbs(p) {
		p = utils.ResolveImportPath(base, p)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.root, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving module %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// Register records the scope of a checked module.
func (c *Cache) Register(path string, id symbols.ScopeID) error {
	key, err := c.Resolve(path)
	if err != nil {
		return err
	}
	c.entries[key] = id
	c.keys[id] = key
	return nil
}

// Lookup returns the scope registered for path.
func (c *Cache) Lookup(path string) (symbols.ScopeID, bool) {
	key, err := c.Resolve(path)
	if err != nil {
		return symbols.NoScope, false
	}
	id, ok := c.entries[key]
	return id, ok
}

// Open returns the scope of the module path imported by importer,
// creating an empty module scope in tree when the path has not been seen
// yet. importer may be NoScope.
func (c *Cache) Open(tree *symbols.Tree, importer symbols.ScopeID, path string) (symbols.ScopeID, error) {
	key, err := c.ResolveFrom(importer, path)
	if err != nil {
		return symbols.NoScope, err
	}
	if id, ok := c.entries[key]; ok {
		return id, nil
	}
	s := tree.NewModule(utils.ExtractModuleName(key, c.ext))
	c.entries[key] = s.ID
	c.keys[s.ID] = key
	return s.ID, nil
}

// Paths returns the registered keys in sorted order.
func (c *Cache) Paths() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Cache) Len() int { return len(c.entries) }
