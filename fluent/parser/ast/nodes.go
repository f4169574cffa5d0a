package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Node represents an interface that every AST node type implements to act as a super type
type Node interface {
	node()
}

// Entry represents a top-level node produced by the runtime parser (message or term)
type Entry interface {
	Node
	entry()
}

// Pattern represents the value of a message, term, attribute or variant.
// It is either a String (a single run of static text) or a PatternList.
// Expressions implement Pattern as well so that a pattern consisting of a
// bare expression can be resolved without wrapping it into a list first.
type Pattern interface {
	Node
	pattern()
}

// PatternElement represents a node that may occur inside a PatternList
type PatternElement interface {
	Node
	patternElement()
}

// Expression represents a node that may occur inside a placeable
type Expression interface {
	PatternElement
	Pattern
	expression()
}

// Literal represents a string or number literal.
// Only literals may be used as variant keys and named argument values.
type Literal interface {
	Expression
	literal()
}

// String represents a run of static text.
// It doubles as the simple form of a pattern.
type String string

func (String) node()           {}
func (String) pattern()        {}
func (String) patternElement() {}

// PatternList represents the complex form of a pattern: an ordered mix of text and expressions
type PatternList []PatternElement

func (PatternList) node()    {}
func (PatternList) pattern() {}

// Message represents a message entry.
// Value may be nil if the message only defines attributes.
type Message struct {
	ID         string
	Value      Pattern
	Attributes map[string]Pattern
}

func (*Message) node()  {}
func (*Message) entry() {}

// Term represents a term entry.
// The ID always carries the leading '-'. Unlike messages, a term always has a value.
type Term struct {
	ID         string
	Value      Pattern
	Attributes map[string]Pattern
}

func (*Term) node()  {}
func (*Term) entry() {}

// StringLiteral represents a quoted string literal with all escape sequences already decoded
type StringLiteral struct {
	Value string
}

func (*StringLiteral) node()           {}
func (*StringLiteral) pattern()        {}
func (*StringLiteral) patternElement() {}
func (*StringLiteral) expression()     {}
func (*StringLiteral) literal()        {}

// NumberLiteral represents a number literal.
// Precision is the amount of digits after the decimal point in the source text.
// It drives display formatting and exact-match semantics in selectors.
type NumberLiteral struct {
	Value     float64
	Precision int
}

func (*NumberLiteral) node()           {}
func (*NumberLiteral) pattern()        {}
func (*NumberLiteral) patternElement() {}
func (*NumberLiteral) expression()     {}
func (*NumberLiteral) literal()        {}

// NewNumberLiteral builds a NumberLiteral from its source text representation
func NewNumberLiteral(raw string) (*NumberLiteral, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number literal '%s'", raw)
	}
	precision := 0
	if dot := strings.IndexByte(raw, '.'); dot >= 0 {
		precision = len(raw) - dot - 1
	}
	return &NumberLiteral{Value: value, Precision: precision}, nil
}

// Number builds a NumberLiteral from an already parsed value.
// A negative precision is invalid use of the construction API and panics.
func Number(value float64, precision int) *NumberLiteral {
	if precision < 0 {
		panic(fmt.Sprintf("ast: negative number literal precision %d", precision))
	}
	return &NumberLiteral{Value: value, Precision: precision}
}

// VariableReference represents a reference to an external or local variable ('$name')
type VariableReference struct {
	Name string
}

func (*VariableReference) node()           {}
func (*VariableReference) pattern()        {}
func (*VariableReference) patternElement() {}
func (*VariableReference) expression()     {}

// MessageReference represents a reference to another message, optionally to one of its attributes
type MessageReference struct {
	Name      string
	Attribute string
}

func (*MessageReference) node()           {}
func (*MessageReference) pattern()        {}
func (*MessageReference) patternElement() {}
func (*MessageReference) expression()     {}

// TermReference represents a reference to a term ('-name'), optionally to one of its
// attributes and optionally parameterized with call arguments.
// Name does not include the leading '-'.
type TermReference struct {
	Name      string
	Attribute string
	Arguments *CallArguments
}

func (*TermReference) node()           {}
func (*TermReference) pattern()        {}
func (*TermReference) patternElement() {}
func (*TermReference) expression()     {}

// FunctionReference represents a call to a registered function.
// Function names are all-uppercase by convention.
type FunctionReference struct {
	Name      string
	Arguments *CallArguments
}

func (*FunctionReference) node()           {}
func (*FunctionReference) pattern()        {}
func (*FunctionReference) patternElement() {}
func (*FunctionReference) expression()     {}

// CallArguments represents the arguments passed to a term or function reference
type CallArguments struct {
	Positional []Expression
	Named      []*NamedArgument
}

func (*CallArguments) node() {}

// NamedArgument represents a 'name: literal' argument of a call
type NamedArgument struct {
	Name  string
	Value Literal
}

func (*NamedArgument) node() {}

// SelectExpression represents a '{$x -> [k1] ... *[k2] ...}' construct.
// Star indexes the default variant and is always a valid index into Variants.
type SelectExpression struct {
	Selector Expression
	Variants []*Variant
	Star     int
}

func (*SelectExpression) node()           {}
func (*SelectExpression) pattern()        {}
func (*SelectExpression) patternElement() {}
func (*SelectExpression) expression()     {}

// Variant represents a single variant of a select expression
type Variant struct {
	Key   Literal
	Value Pattern
}

func (*Variant) node() {}
