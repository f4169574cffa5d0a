package fluent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-fluent/fluent.go/fluent/parser/ast"
	"golang.org/x/text/language"
)

// Bidi isolation marks wrapped around resolved placeables when isolation is enabled
const (
	fsi = "\u2068" // FIRST STRONG ISOLATE
	pdi = "\u2069" // POP DIRECTIONAL ISOLATE
)

var numericString = regexp.MustCompile(`^\d+(\.\d+)?$`)

// resolvePattern resolves a pattern into its final string form.
// Simple patterns pass through unchanged; complex ones are resolved element
// by element and concatenated. A pattern consisting of a bare expression is
// not produced by the runtime parser but accepted defensively.
func (scope *Scope) resolvePattern(pattern ast.Pattern) string {
	switch p := pattern.(type) {
	case ast.String:
		return string(p)
	case ast.PatternList:
		// Isolation only matters when an expression has neighbors to bleed into
		isolate := scope.bundle.useIsolating && len(p) > 1
		result := ""
		for _, element := range p {
			result += scope.resolvePatternElement(element, isolate)
		}
		return result
	case ast.Expression:
		return scope.resolvePatternElement(p, false)
	default:
		return ""
	}
}

// resolvePatternElement resolves a single pattern element into display text.
// Resolved expressions are wrapped into bidi isolation marks if requested;
// plain text elements never are.
func (scope *Scope) resolvePatternElement(element ast.PatternElement, isolate bool) string {
	if text, ok := element.(ast.String); ok {
		return string(text)
	}
	expression, ok := element.(ast.Expression)
	if !ok {
		return ""
	}

	resolved := scope.resolveExpression(expression).String()
	if isolate {
		return fsi + resolved + pdi
	}
	return resolved
}

// resolveExpression resolves a single expression into a Value
func (scope *Scope) resolveExpression(expression ast.Expression) Value {
	switch e := expression.(type) {
	case *ast.StringLiteral:
		return String(e.Value)

	case *ast.NumberLiteral:
		return &NumberValue{Value: e.Value, Precision: e.Precision}

	case *ast.VariableReference:
		return scope.resolveVariableReference(e)

	case *ast.MessageReference:
		return scope.resolveMessageReference(e)

	case *ast.TermReference:
		return scope.resolveTermReference(e)

	case *ast.FunctionReference:
		return scope.resolveFunctionReference(e)

	case *ast.SelectExpression:
		return scope.resolveSelectExpression(e)

	default:
		return &NoValue{value: "???"}
	}
}

func (scope *Scope) resolveVariableReference(ref *ast.VariableReference) Value {
	if value := scope.Variable(ref.Name); value != nil {
		return value
	}
	scope.AddError(fmt.Errorf("Unknown variable: $%s", ref.Name))
	return &NoValue{value: "$" + ref.Name}
}

func (scope *Scope) resolveMessageReference(ref *ast.MessageReference) Value {
	if !scope.Track(ref.Name) {
		return &NoValue{value: ref.Name}
	}
	defer scope.Release(ref.Name)

	message := scope.bundle.Message(ref.Name)
	if message == nil {
		scope.AddError(fmt.Errorf("Unknown message: %s", ref.Name))
		return &NoValue{value: ref.Name}
	}

	if ref.Attribute != "" {
		attribute, ok := message.Attributes[ref.Attribute]
		if !ok {
			scope.AddError(fmt.Errorf("Unknown message attribute: %s.%s", ref.Name, ref.Attribute))
			return &NoValue{value: ref.Name + "." + ref.Attribute}
		}
		return String(scope.resolvePattern(attribute))
	}

	if message.Value == nil {
		scope.AddError(fmt.Errorf("Message has no value: %s", ref.Name))
		return &NoValue{value: ref.Name}
	}
	return String(scope.resolvePattern(message.Value))
}

func (scope *Scope) resolveTermReference(ref *ast.TermReference) Value {
	id := "-" + ref.Name
	if !scope.Track(id) {
		return &NoValue{value: id}
	}
	defer scope.Release(id)

	term := scope.bundle.Term(id)
	if term == nil {
		scope.AddError(fmt.Errorf("Unknown term: %s", id))
		return &NoValue{value: id}
	}

	// Named call arguments bind local variables for the term's pattern.
	// The term only ever sees its own arguments: locals of the calling
	// pattern are swapped out for the duration of the resolution so that a
	// term call never leaks its arguments into nested term references.
	saved := scope.locals
	defer func() { scope.locals = saved }()

	var locals map[string]Value
	if ref.Arguments != nil {
		locals = make(map[string]Value, len(ref.Arguments.Named))
		for _, arg := range ref.Arguments.Named {
			locals[arg.Name] = scope.resolveExpression(arg.Value)
		}
	}
	scope.locals = locals

	if ref.Attribute != "" {
		attribute, ok := term.Attributes[ref.Attribute]
		if !ok {
			scope.AddError(fmt.Errorf("Unknown term attribute: %s.%s", id, ref.Attribute))
			return &NoValue{value: id + "." + ref.Attribute}
		}
		return String(scope.resolvePattern(attribute))
	}
	return String(scope.resolvePattern(term.Value))
}

func (scope *Scope) resolveFunctionReference(ref *ast.FunctionReference) Value {
	function := scope.functions[ref.Name]
	if function == nil {
		scope.AddError(fmt.Errorf("Unknown function: %s", ref.Name))
		return &NoValue{value: ref.Name + "()"}
	}

	// Arguments are resolved in a child scope so that argument failures can
	// be told apart from errors the caller accumulated earlier
	child := scope.Child(nil)
	var positional []Value
	named := make(map[string]Value)
	if ref.Arguments != nil {
		positional = make([]Value, 0, len(ref.Arguments.Positional))
		for _, arg := range ref.Arguments.Positional {
			positional = append(positional, child.resolveExpression(arg))
		}
		for _, arg := range ref.Arguments.Named {
			named[arg.Name] = child.resolveExpression(arg.Value)
		}
	}
	scope.errors = append(scope.errors, child.errors...)

	// A call with broken arguments is never forwarded to the function;
	// the unresolved call shape becomes the placeholder instead
	if len(child.errors) > 0 {
		return &NoValue{value: formatCall(ref)}
	}

	result, err := invokeFunction(function, positional, named, scope.bundle.locales[0])
	if err != nil {
		scope.AddError(fmt.Errorf("Function error in %s: %s", ref.Name, err))
		return &NoValue{value: ref.Name + "()"}
	}
	return result
}

// invokeFunction calls a user-supplied function, converting panics into errors
func invokeFunction(function Function, positional []Value, named map[string]Value, locale language.Tag) (result Value, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = nil
			err = fmt.Errorf("%v", recovered)
		}
	}()

	result, err = function(positional, named, locale)
	if err == nil && result == nil {
		err = fmt.Errorf("function returned no value")
	}
	return
}

func (scope *Scope) resolveSelectExpression(sel *ast.SelectExpression) Value {
	selector := scope.resolveExpression(sel.Selector)

	// A selector that failed to resolve routes straight to the default variant
	if _, failed := selector.(*NoValue); !failed {
		for _, variant := range sel.Variants {
			if scope.matchesVariant(selector, variant.Key) {
				return String(scope.resolvePattern(variant.Value))
			}
		}
	}

	if sel.Star >= 0 && sel.Star < len(sel.Variants) {
		return String(scope.resolvePattern(sel.Variants[sel.Star].Value))
	}

	scope.AddError(fmt.Errorf("No variant found for selector: %s", selector.String()))
	return String(selector.String())
}

// matchesVariant checks a resolved selector value against a single variant key
func (scope *Scope) matchesVariant(selector Value, key ast.Literal) bool {
	switch k := key.(type) {
	case *ast.NumberLiteral:
		if num, ok := selector.(*NumberValue); ok {
			// A precision-less key compares as integer, truncating both sides
			if k.Precision == 0 {
				return int64(num.Value) == int64(k.Value)
			}
			return num.Value == k.Value
		}
		// Mixed kinds fall back to comparing both sides' textual form
		return selector.String() == (&NumberValue{Value: k.Value, Precision: k.Precision}).String()

	case *ast.StringLiteral:
		// A numeric-looking selector first tries CLDR plural category matching
		if num, numeric := numericSelector(selector); numeric {
			category, err := scope.pluralCategory(num)
			if err != nil {
				scope.AddError(err)
			} else if k.Value == category {
				return true
			}
		}
		return selector.String() == k.Value
	}

	return false
}

// numericSelector extracts the numeric form of a selector value, if it has one
func numericSelector(selector Value) (*NumberValue, bool) {
	if num, ok := selector.(*NumberValue); ok {
		return num, true
	}
	if str, ok := selector.(*StringValue); ok && numericString.MatchString(str.Value) {
		literal, err := ast.NewNumberLiteral(str.Value)
		if err != nil {
			return nil, false
		}
		return &NumberValue{Value: literal.Value, Precision: literal.Precision}, true
	}
	return nil, false
}

// pluralCategory derives the plural category of a number, walking the
// bundle's locale fallback chain until one locale yields a category
func (scope *Scope) pluralCategory(num *NumberValue) (string, error) {
	var lastErr error
	for _, locale := range scope.bundle.locales {
		category, err := pluralCategoryFor(locale, num)
		if err == nil {
			return category, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("Plural category lookup failed: %s", lastErr)
}

// formatCall reconstructs a readable (not necessarily round-trippable) form
// of a function call whose arguments could not be resolved
func formatCall(ref *ast.FunctionReference) string {
	var parts []string
	if ref.Arguments != nil {
		for _, arg := range ref.Arguments.Positional {
			parts = append(parts, formatArgument(arg))
		}
		for _, arg := range ref.Arguments.Named {
			parts = append(parts, arg.Name+": "+formatArgument(arg.Value))
		}
	}
	return ref.Name + "(" + strings.Join(parts, ", ") + ")"
}

func formatArgument(expression ast.Expression) string {
	switch e := expression.(type) {
	case *ast.VariableReference:
		return "$" + e.Name
	case *ast.StringLiteral:
		return e.Value
	case *ast.NumberLiteral:
		return (&NumberValue{Value: e.Value, Precision: e.Precision}).String()
	case *ast.MessageReference:
		if e.Attribute != "" {
			return e.Name + "." + e.Attribute
		}
		return e.Name
	case *ast.TermReference:
		if e.Attribute != "" {
			return "-" + e.Name + "." + e.Attribute
		}
		return "-" + e.Name
	case *ast.FunctionReference:
		return e.Name + "()"
	default:
		return "???"
	}
}
