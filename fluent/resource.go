package fluent

import (
	"github.com/go-fluent/fluent.go/fluent/parser"
	"github.com/go-fluent/fluent.go/fluent/parser/ast"
)

// Resource represents a collection of messages and terms extracted out of a FTL source
type Resource struct {
	messages []*ast.Message
	terms    []*ast.Term
}

// NewResource parses the given source string and assembles its entries into a new Resource object.
// The runtime parser skips structurally invalid entries instead of failing,
// so the only signal for a completely broken source is an empty resource.
func NewResource(source string) *Resource {
	resource := &Resource{}
	for _, entry := range parser.Parse(source) {
		switch e := entry.(type) {
		case *ast.Message:
			resource.messages = append(resource.messages, e)
		case *ast.Term:
			resource.terms = append(resource.terms, e)
		}
	}
	return resource
}

// Messages returns the messages of the resource in declaration order
func (resource *Resource) Messages() []*ast.Message {
	return resource.messages
}

// Terms returns the terms of the resource in declaration order
func (resource *Resource) Terms() []*ast.Term {
	return resource.terms
}

// IsEmpty returns whether no terms and no messages are present in the resource.
// This can be the case if the parser could not parse any valid messages and terms.
func (resource *Resource) IsEmpty() bool {
	return len(resource.messages) == 0 && len(resource.terms) == 0
}
