package fluent

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-fluent/fluent.go/fluent/parser/ast"
	"golang.org/x/text/language"
)

var functionName = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)

// Bundle represents a collection of messages and terms collected from one or many resources.
// It provides the main API to format messages.
// A bundle has to be treated as read-only once all resources are added;
// concurrent format calls against a read-only bundle are safe.
type Bundle struct {
	locales      []language.Tag
	messages     map[string]*ast.Message
	terms        map[string]*ast.Term
	functions    map[string]Function
	useIsolating bool
	printers     *PrinterCache
}

// BundleOption configures a Bundle at construction time
type BundleOption func(*Bundle)

// WithFallbacks appends fallback locales to the bundle's locale chain
func WithFallbacks(locales ...language.Tag) BundleOption {
	return func(bundle *Bundle) {
		bundle.locales = append(bundle.locales, locales...)
	}
}

// WithIsolating controls whether resolved placeables are wrapped into
// Unicode bidi isolation marks (FSI/PDI) when they have text neighbors
func WithIsolating(enabled bool) BundleOption {
	return func(bundle *Bundle) {
		bundle.useIsolating = enabled
	}
}

// WithPrinterCache injects a formatter cache shared with other bundles
func WithPrinterCache(cache *PrinterCache) BundleOption {
	return func(bundle *Bundle) {
		bundle.printers = cache
	}
}

// NewBundle creates a new empty bundle.
// The NUMBER and DATETIME functions are registered by default.
func NewBundle(primaryLocale language.Tag, options ...BundleOption) *Bundle {
	bundle := &Bundle{
		locales:   []language.Tag{primaryLocale},
		messages:  make(map[string]*ast.Message),
		terms:     make(map[string]*ast.Term),
		functions: make(map[string]Function),
	}
	for _, option := range options {
		option(bundle)
	}
	if bundle.printers == nil {
		bundle.printers = NewPrinterCache()
	}
	for name, function := range builtinFunctions(bundle.printers) {
		bundle.functions[name] = function
	}
	return bundle
}

// Locales returns the bundle's locale fallback chain, primary locale first
func (bundle *Bundle) Locales() []language.Tag {
	return bundle.locales
}

// Message returns the message stored under the given id, nil if there is none
func (bundle *Bundle) Message(id string) *ast.Message {
	return bundle.messages[id]
}

// Term returns the term stored under the given id (including the leading '-'), nil if there is none
func (bundle *Bundle) Term(id string) *ast.Term {
	return bundle.terms[id]
}

// RegisterFunction registers a function under the given name, overriding any
// previous registration. Function names have to be all-uppercase.
func (bundle *Bundle) RegisterFunction(name string, function Function) error {
	name = strings.TrimSpace(name)
	if !functionName.MatchString(name) {
		return fmt.Errorf("'%s' is no valid function name", name)
	}
	bundle.functions[name] = function
	return nil
}

// AddResource adds a Resource to the Bundle.
// If a message or term was already defined by another resource, an error is raised and the entry is skipped.
func (bundle *Bundle) AddResource(resource *Resource) (errs []error) {
	for _, message := range resource.messages {
		if bundle.messages[message.ID] != nil {
			errs = append(errs, fmt.Errorf("message '%s' is already defined", message.ID))
			continue
		}
		bundle.messages[message.ID] = message
	}
	for _, term := range resource.terms {
		if bundle.terms[term.ID] != nil {
			errs = append(errs, fmt.Errorf("term '%s' is already defined", term.ID))
			continue
		}
		bundle.terms[term.ID] = term
	}
	return
}

// AddResourceOverriding adds a Resource to the Bundle.
// If a message or term was already defined by another resource, the already existing one gets overridden.
func (bundle *Bundle) AddResourceOverriding(resource *Resource) {
	for _, message := range resource.messages {
		bundle.messages[message.ID] = message
	}
	for _, term := range resource.terms {
		bundle.terms[term.ID] = term
	}
}

type formatOption func(*Scope)

// WithVariable creates a format option with a single variable
func WithVariable(key string, value interface{}) formatOption {
	return WithVariables(map[string]interface{}{key: value})
}

// WithVariables creates a format option with multiple variables.
// Variables of unsupported types are silently dropped; references to them
// resolve like any other missing variable.
func WithVariables(variables map[string]interface{}) formatOption {
	return func(scope *Scope) {
		for name, variable := range variables {
			if value := resolveValue(variable); value != nil {
				scope.args[strings.TrimSpace(name)] = value
			}
		}
	}
}

// WithFunction creates a format option with a single function valid for one format call
func WithFunction(key string, function Function) formatOption {
	return WithFunctions(map[string]Function{key: function})
}

// WithFunctions creates a format option with multiple functions valid for one format call
func WithFunctions(functions map[string]Function) formatOption {
	return func(scope *Scope) {
		for name, function := range functions {
			scope.functions[strings.TrimSpace(strings.ToUpper(name))] = function
		}
	}
}

// resolveValue coerces an external Go value into a Value
func resolveValue(value interface{}) Value {
	switch val := value.(type) {
	// time.Time has a String method and would satisfy the Value case,
	// so it has to be matched first
	case time.Time:
		return Time(val)
	case Value:
		return val
	case string:
		return String(val)
	case float32:
		return Number(float64(val))
	case float64:
		return Number(val)
	case int:
		return Number(float64(val))
	case int8:
		return Number(float64(val))
	case int16:
		return Number(float64(val))
	case int32:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	case uint:
		return Number(float64(val))
	case uint8:
		return Number(float64(val))
	case uint16:
		return Number(float64(val))
	case uint32:
		return Number(float64(val))
	case uint64:
		return Number(float64(val))
	default:
		return nil
	}
}

// FormatMessage formats the message with the given key.
// To pass variables or functions, pass options created using WithVariable, WithVariables, WithFunction or WithFunctions.
// Besides the formatted message, this method returns the errors the resolver stumbled upon during resolving specific values
// and an optional error if there is no message with the given key.
// If the resolver returns errors it does not automatically mean that the whole message could not be resolved.
// It may be just incomplete.
func (bundle *Bundle) FormatMessage(key string, options ...formatOption) (string, []error, error) {
	message := bundle.messages[key]
	if message == nil {
		return "", nil, fmt.Errorf("message '%s' does not exist", key)
	}
	if message.Value == nil {
		return "", nil, fmt.Errorf("message '%s' has no value", key)
	}

	scope := bundle.newScope()
	for _, option := range options {
		option(scope)
	}

	result := scope.resolvePattern(message.Value)
	return result, scope.errors, nil
}

// newScope assembles a fresh scope for one format call
func (bundle *Bundle) newScope() *Scope {
	functions := make(map[string]Function, len(bundle.functions))
	for name, function := range bundle.functions {
		functions[name] = function
	}
	return &Scope{
		bundle:    bundle,
		args:      make(map[string]Value),
		functions: functions,
		dirty:     make(map[string]struct{}),
	}
}
