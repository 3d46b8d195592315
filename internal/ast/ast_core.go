package ast

import (
	"github.com/funvibe/typecore/internal/token"
	"github.com/funvibe/typecore/internal/typesystem"
)

// Node is the base interface for all typed expression nodes.
type Node interface {
	String() string
	Loc() token.Location
}

// Expression is a Node that carries the type the elaborator assigned to it.
type Expression interface {
	Node
	expressionNode()
	RefType() typesystem.Type
}

// Visibility of a binding or of the access requesting it.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) IsPrivate() bool { return v == Private }

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}
