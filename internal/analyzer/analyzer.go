package analyzer

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/funvibe/typecore/internal/ast"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/modules"
	"github.com/funvibe/typecore/internal/symbols"
	"github.com/funvibe/typecore/internal/typesystem"
)

// ModuleCache resolves module paths to module scopes.
type ModuleCache interface {
	Lookup(path string) (symbols.ScopeID, bool)
	Open(tree *symbols.Tree, importer symbols.ScopeID, path string) (symbols.ScopeID, error)
}

// Checker types calls, attribute accesses and operators of one
// compilation unit. It owns the free-variable store of the pass and reads
// and writes the scope tree.
//
// A Checker is not safe for concurrent use.
type Checker struct {
	tree     *symbols.Tree
	store    *typesystem.Store
	modules  ModuleCache
	settings *config.Settings
	logger   *slog.Logger
	passID   uuid.UUID

	scope  symbols.ScopeID
	level  typesystem.Level
	scopes []symbols.ScopeID // enclosing scopes saved by EnterScope

	choices *choices // set while a call is being bound
}

type Option func(*Checker)

func WithSettings(s *config.Settings) Option {
	return func(c *Checker) { c.settings = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

func WithModules(m ModuleCache) Option {
	return func(c *Checker) { c.modules = m }
}

// WithScope makes the checker start in an existing scope instead of a
// fresh module.
func WithScope(id symbols.ScopeID) Option {
	return func(c *Checker) { c.scope = id }
}

// WithStore shares a free-variable store between checkers.
func WithStore(s *typesystem.Store) Option {
	return func(c *Checker) { c.store = s }
}

// New creates a checker over tree. Unless WithScope is given, checking
// starts in a new module scope.
func New(tree *symbols.Tree, opts ...Option) *Checker {
	c := &Checker{
		tree:   tree,
		scope:  symbols.NoScope,
		level:  typesystem.TopLevel,
		passID: uuid.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.settings == nil {
		c.settings = config.DefaultSettings()
	}
	if c.store == nil {
		c.store = typesystem.NewStore()
	}
	if c.modules == nil {
		c.modules = modules.NewCache(c.settings)
	}
	if c.logger == nil {
		c.logger = config.NewLogger(c.settings.LogLevel, nil)
	}
	c.logger = c.logger.With("pass", c.passID.String())
	if c.scope == symbols.NoScope {
		c.scope = tree.NewModule("").ID
	}
	return c
}

func (c *Checker) Tree() *symbols.Tree        { return c.tree }
func (c *Checker) Store() *typesystem.Store   { return c.store }
func (c *Checker) Scope() symbols.ScopeID     { return c.scope }
func (c *Checker) Level() typesystem.Level    { return c.level }
func (c *Checker) PassID() uuid.UUID          { return c.passID }
func (c *Checker) Settings() *config.Settings { return c.settings }

// Namespace is the qualified name of the current scope.
func (c *Checker) Namespace() string { return c.tree.Get(c.scope).Name }

// Format prints t with its unbound variables and their bounds.
func (c *Checker) Format(t typesystem.Type) string { return c.store.Format(t) }

// Check types a call expression.
func (c *Checker) Check(call *ast.Call) (typesystem.Type, error) {
	return c.BindCall(call.Obj, call.AttrName, call.Pos, call.Kw)
}

// shown is a type printed when the diagnostic was built, so later store
// rollbacks do not change the report.
type shown string

func (s shown) String() string { return string(s) }

func (c *Checker) show(t typesystem.Type) fmt.Stringer { return shown(c.store.Format(t)) }

func (c *Checker) suggestionLimit(name string) int {
	return c.settings.SuggestionLimit(name)
}
