package fluent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestSequenceFallback(t *testing.T) {
	german := NewBundle(language.German)
	require.Empty(t, german.AddResource(NewResource("hello = Hallo, { $name }!")))
	english := NewBundle(language.English)
	require.Empty(t, english.AddResource(NewResource("hello = Hello, { $name }!\nbye = Bye!")))

	sequence := NewSequence(german, english)
	assert.Len(t, sequence.Bundles(), 2)

	// The first bundle defining the message wins
	result, errs, err := sequence.FormatMessage("hello", WithVariable("name", "Welt"))
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "Hallo, Welt!", result)

	result, _, err = sequence.FormatMessage("bye")
	require.NoError(t, err)
	assert.Equal(t, "Bye!", result)
}

func TestSequenceMissingEverywhere(t *testing.T) {
	sequence := NewSequence(NewBundle(language.English))

	_, _, err := sequence.FormatMessage("missing")
	assert.EqualError(t, err, "message 'missing' does not exist in any bundle")
}
