package fluent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberFunction(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"grouping", "msg = { NUMBER($n) }", "1,234.5"},
		{"minimumFractionDigits", "msg = { NUMBER($n, minimumFractionDigits: 2) }", "1,234.50"},
		{"style decimal", "msg = { NUMBER($n, style: \"decimal\") }", "1,234.5"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundle := testBundle(t, test.source)
			result, errs, err := bundle.FormatMessage("msg", WithVariable("n", 1234.5))
			require.NoError(t, err)
			assert.Empty(t, errs)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestNumberFunctionKeepsLiteralPrecision(t *testing.T) {
	bundle := testBundle(t, "msg = { NUMBER(3.140) }")

	result, errs, err := bundle.FormatMessage("msg")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "3.140", result)
}

func TestNumberFunctionPercent(t *testing.T) {
	bundle := testBundle(t, "msg = { NUMBER($rate, style: \"percent\") }")

	result, errs, err := bundle.FormatMessage("msg", WithVariable("rate", 0.5))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "50%", result)
}

func TestNumberFunctionErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		options []formatOption
		message string
	}{
		{
			"no argument",
			"msg = { NUMBER() }",
			nil,
			"Function error in NUMBER: exactly one positional argument is required",
		},
		{
			"non-numeric argument",
			"msg = { NUMBER($n) }",
			[]formatOption{WithVariable("n", "text")},
			"Function error in NUMBER: the positional argument has to be a number",
		},
		{
			"currency without code",
			"msg = { NUMBER($n, style: \"currency\") }",
			[]formatOption{WithVariable("n", 9.99)},
			"Function error in NUMBER: the currency style requires a currency option",
		},
		{
			"invalid currency code",
			"msg = { NUMBER($n, style: \"currency\", currency: \"NOPE!\") }",
			[]formatOption{WithVariable("n", 9.99)},
			"Function error in NUMBER: 'NOPE!' is no valid currency code",
		},
		{
			"unknown style",
			"msg = { NUMBER($n, style: \"scientific\") }",
			[]formatOption{WithVariable("n", 1.0)},
			"Function error in NUMBER: unknown style 'scientific'",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundle := testBundle(t, test.source)
			result, errs, err := bundle.FormatMessage("msg", test.options...)
			require.NoError(t, err)
			assert.Equal(t, "{NUMBER()}", result)
			require.Len(t, errs, 1)
			assert.EqualError(t, errs[0], test.message)
		})
	}
}

func TestDatetimeFunction(t *testing.T) {
	when := time.Date(2024, time.May, 1, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"default medium date", "msg = { DATETIME($when) }", "May 1, 2024"},
		{"full date", "msg = { DATETIME($when, dateStyle: \"full\") }", "Wednesday, May 1, 2024"},
		{"short time", "msg = { DATETIME($when, timeStyle: \"short\") }", "3:30 PM"},
		{"date and time", "msg = { DATETIME($when, dateStyle: \"short\", timeStyle: \"short\") }", "5/1/24, 3:30 PM"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundle := testBundle(t, test.source)
			result, errs, err := bundle.FormatMessage("msg", WithVariable("when", when))
			require.NoError(t, err)
			assert.Empty(t, errs)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestDatetimeFunctionParsesStrings(t *testing.T) {
	bundle := testBundle(t, "msg = { DATETIME($when) }")

	result, errs, err := bundle.FormatMessage("msg", WithVariable("when", "2024-05-01T15:30:00Z"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "May 1, 2024", result)
}

func TestDatetimeFunctionErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		options []formatOption
		message string
	}{
		{
			"invalid timestamp",
			"msg = { DATETIME($when) }",
			[]formatOption{WithVariable("when", "yesterday")},
			"Function error in DATETIME: 'yesterday' is no valid RFC 3339 timestamp",
		},
		{
			"non-datetime argument",
			"msg = { DATETIME($when) }",
			[]formatOption{WithVariable("when", 5)},
			"Function error in DATETIME: the positional argument has to be a datetime",
		},
		{
			"unknown dateStyle",
			"msg = { DATETIME($when, dateStyle: \"tiny\") }",
			[]formatOption{WithVariable("when", time.Now())},
			"Function error in DATETIME: unknown dateStyle 'tiny'",
		},
		{
			"unknown timeStyle",
			"msg = { DATETIME($when, timeStyle: \"tiny\") }",
			[]formatOption{WithVariable("when", time.Now())},
			"Function error in DATETIME: unknown timeStyle 'tiny'",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundle := testBundle(t, test.source)
			result, errs, err := bundle.FormatMessage("msg", test.options...)
			require.NoError(t, err)
			assert.Equal(t, "{DATETIME()}", result)
			require.Len(t, errs, 1)
			assert.EqualError(t, errs[0], test.message)
		})
	}
}
