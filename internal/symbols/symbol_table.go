// symbols/symbol_table.go - Scope tree entry point
//
// The scope tree is split into focused files:
// - symbol_table_core.go: scope kinds, VarInfo, TraitInstance, Scope struct
// - symbol_table_tree.go: the scope arena and outward walks
// - symbol_table_operations.go: definitions and type/trait registration
// - symbol_table_resolution.go: chain lookups over the tree
// - symbol_table_similar.go: "did you mean" suggestions

package symbols
