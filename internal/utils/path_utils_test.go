package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveImportPath(t *testing.T) {
	assert.Equal(t, filepath.Join("lib", "util"), ResolveImportPath("lib", "./util"))
	assert.Equal(t, "./util", ResolveImportPath(".", "./util"))
	assert.Equal(t, "std/math", ResolveImportPath("lib", "std/math"))
}

func TestSourceExt(t *testing.T) {
	assert.Equal(t, "a/b.er", WithSourceExt("a/b", ".er"))
	assert.Equal(t, "a/b.er", WithSourceExt("a/b.er", ".er"))
	assert.Equal(t, "b", ExtractModuleName("a/b.er", ".er"))
}
