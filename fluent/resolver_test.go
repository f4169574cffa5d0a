package fluent

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testBundle(t *testing.T, source string, options ...BundleOption) *Bundle {
	t.Helper()
	bundle := NewBundle(language.English, options...)
	require.Empty(t, bundle.AddResource(NewResource(source)))
	return bundle
}

func TestResolveMissingVariable(t *testing.T) {
	bundle := testBundle(t, "hello = Hello, { $name }!")

	result, errs, err := bundle.FormatMessage("hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello, {$name}!", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown variable: $name")
}

func TestResolveCircularReference(t *testing.T) {
	bundle := testBundle(t, "-a = { -b }\n-b = { -a }\nmsg = { -a }")

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{-a}", result)
	require.NotEmpty(t, errs)
	assert.EqualError(t, errs[0], "Circular reference: -a")
}

func TestResolveMessageCycle(t *testing.T) {
	bundle := testBundle(t, "a = A { b }\nb = B { a }")

	// The top-level message is not tracked itself, so the cycle is detected
	// once 'b' is re-entered one level down
	result, errs, err := bundle.FormatMessage("a")
	require.NoError(t, err)
	assert.Equal(t, "A B A {b}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Circular reference: b")
}

func TestResolvePluralSelection(t *testing.T) {
	bundle := testBundle(t, "emails = { $count ->\n    [one] one email\n   *[other] many emails\n }")

	result, errs, err := bundle.FormatMessage("emails", WithVariable("count", 1))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "one email", result)

	for _, count := range []int{0, 2, 5, 100} {
		result, _, err = bundle.FormatMessage("emails", WithVariable("count", count))
		require.NoError(t, err)
		assert.Equal(t, "many emails", result)
	}
}

func TestResolveExactMatchBeatsPluralCategory(t *testing.T) {
	bundle := testBundle(t, "warnings = { $count ->\n    [0] none\n    [one] a single warning\n   *[other] several warnings\n }")

	result, _, err := bundle.FormatMessage("warnings", WithVariable("count", 0))
	require.NoError(t, err)
	assert.Equal(t, "none", result)

	result, _, err = bundle.FormatMessage("warnings", WithVariable("count", 1))
	require.NoError(t, err)
	assert.Equal(t, "a single warning", result)
}

func TestResolveStringSelector(t *testing.T) {
	bundle := testBundle(t, "msg = { $gender ->\n    [male] his page\n    [female] her page\n   *[other] their page\n }")

	result, _, err := bundle.FormatMessage("msg", WithVariable("gender", "female"))
	require.NoError(t, err)
	assert.Equal(t, "her page", result)
}

func TestResolveFailedSelectorUsesDefault(t *testing.T) {
	bundle := testBundle(t, "msg = { $missing ->\n    [one] one\n   *[other] other\n }")

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "other", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown variable: $missing")
}

func TestResolveTermReference(t *testing.T) {
	bundle := testBundle(t, "-brand = Firefox\n    .gender = masculine\nabout = About { -brand }\ngender = { -brand.gender }")

	result, errs, err := bundle.FormatMessage("about")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "About Firefox", result)

	result, _, err = bundle.FormatMessage("gender")
	require.NoError(t, err)
	assert.Equal(t, "masculine", result)
}

func TestResolveTermCallArguments(t *testing.T) {
	bundle := testBundle(t, "-thing = { $article ->\n    [definite] the thing\n   *[indefinite] a thing\n }\ndefinite = Look at { -thing(article: \"definite\") }\nplain = Look at { -thing }")

	result, errs, err := bundle.FormatMessage("definite")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Look at the thing", result)

	// Without arguments the selector fails and the default variant is used
	result, errs, err = bundle.FormatMessage("plain")
	require.NoError(t, err)
	assert.Equal(t, "Look at a thing", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown variable: $article")
}

func TestResolveTermArgumentsDoNotLeak(t *testing.T) {
	bundle := testBundle(t, "-greet = Hi { $name }\nmsg = { -greet(name: \"Ann\") } and { $name }")

	result, errs, err := bundle.FormatMessage("msg", WithVariable("name", "Ben"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Hi Ann and Ben", result)
}

func TestResolveTermArgumentsScopedToCalledTerm(t *testing.T) {
	bundle := testBundle(t, "-inner = { $name }\n-outer = outer { -inner }\nmsg = { -outer(name: \"X\") }")

	// The argument binds inside -outer only; -inner is called without
	// arguments and must not see it
	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "outer {$name}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown variable: $name")
}

func TestResolveUnknownReferences(t *testing.T) {
	bundle := testBundle(t, "a = { missing }\nb = { -missing }\nc = { other.attr }\nd = { -brand.attr }\nother = Hi\n-brand = Firefox")

	tests := []struct {
		key     string
		result  string
		message string
	}{
		{"a", "{missing}", "Unknown message: missing"},
		{"b", "{-missing}", "Unknown term: -missing"},
		{"c", "{other.attr}", "Unknown message attribute: other.attr"},
		{"d", "{-brand.attr}", "Unknown term attribute: -brand.attr"},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			result, errs, err := bundle.FormatMessage(test.key)
			require.NoError(t, err)
			assert.Equal(t, test.result, result)
			require.Len(t, errs, 1)
			assert.EqualError(t, errs[0], test.message)
		})
	}
}

func TestResolveReferencedMessageWithoutValue(t *testing.T) {
	bundle := testBundle(t, "headless =\n    .title = Title\nmsg = { headless }")

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{headless}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Message has no value: headless")
}

func TestResolveMessageAttributeReference(t *testing.T) {
	bundle := testBundle(t, "login = Log in\n    .tooltip = Click here\nhelp = { login.tooltip }")

	result, errs, err := bundle.FormatMessage("help")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Click here", result)
}

func TestResolveUnknownFunction(t *testing.T) {
	bundle := testBundle(t, "msg = { FOO() }")

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{FOO()}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown function: FOO")
}

func TestResolveFunctionArgumentFailure(t *testing.T) {
	bundle := testBundle(t, "msg = { SHOUT($name) }")
	require.NoError(t, bundle.RegisterFunction("SHOUT", func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		return String("should not be called"), nil
	}))

	// A call with unresolvable arguments is never invoked; the call shape
	// itself becomes the placeholder
	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{SHOUT($name)}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Unknown variable: $name")
}

func TestResolveFunctionError(t *testing.T) {
	bundle := testBundle(t, "msg = { BOOM() }")
	require.NoError(t, bundle.RegisterFunction("BOOM", func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		return nil, fmt.Errorf("boom")
	}))

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{BOOM()}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Function error in BOOM: boom")
}

func TestResolveFunctionPanic(t *testing.T) {
	bundle := testBundle(t, "msg = { PANIC() }")
	require.NoError(t, bundle.RegisterFunction("PANIC", func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		panic("broken function")
	}))

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{PANIC()}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Function error in PANIC: broken function")
}

func TestResolveFunctionWithoutResult(t *testing.T) {
	bundle := testBundle(t, "msg = { NOTHING() }")
	require.NoError(t, bundle.RegisterFunction("NOTHING", func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		return nil, nil
	}))

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Equal(t, "{NOTHING()}", result)
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "Function error in NOTHING: function returned no value")
}

func TestResolveIsolation(t *testing.T) {
	bundle := testBundle(t, "hello = Hello, { $name }!\nonly = { $name }", WithIsolating(true))

	result, errs, err := bundle.FormatMessage("hello", WithVariable("name", "World"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Hello, \u2068World\u2069!", result)

	// A pattern consisting of a single placeable has no neighbors to bleed
	// into and is not isolated
	result, _, err = bundle.FormatMessage("only", WithVariable("name", "World"))
	require.NoError(t, err)
	assert.Equal(t, "World", result)
}

func TestResolveIsolationDisabledByDefault(t *testing.T) {
	bundle := testBundle(t, "hello = Hello, { $name }!")

	result, _, err := bundle.FormatMessage("hello", WithVariable("name", "World"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", result)
}

func TestResolveNumberDisplay(t *testing.T) {
	bundle := testBundle(t, "pi = { 3.140 }\nfraction = { 5.0 }\nliteral = { 4 }\nvariable = { $n }")

	tests := []struct {
		key      string
		options  []formatOption
		expected string
	}{
		{"pi", nil, "3.140"},
		{"fraction", nil, "5.0"},
		{"literal", nil, "4"},
		{"variable", []formatOption{WithVariable("n", 2.5)}, "2.5"},
		{"variable", []formatOption{WithVariable("n", 4)}, "4"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result, errs, err := bundle.FormatMessage(test.key, test.options...)
			require.NoError(t, err)
			assert.Empty(t, errs)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestResolveStringLiteral(t *testing.T) {
	bundle := testBundle(t, `msg = { "literal text" }`)

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "literal text", result)
}
