package fluent

import "fmt"

// Sequence formats messages against an ordered list of bundles, using the
// first bundle that defines the requested message. It is the convenience
// layer for locale fallback across whole bundles.
type Sequence struct {
	bundles []*Bundle
}

// NewSequence creates a new sequence over the given bundles, most preferred first
func NewSequence(bundles ...*Bundle) *Sequence {
	return &Sequence{bundles: bundles}
}

// Bundles returns the bundles of the sequence in preference order
func (sequence *Sequence) Bundles() []*Bundle {
	return sequence.bundles
}

// FormatMessage formats the message with the given key using the first
// bundle that defines it. The semantics match Bundle.FormatMessage.
func (sequence *Sequence) FormatMessage(key string, options ...formatOption) (string, []error, error) {
	for _, bundle := range sequence.bundles {
		if bundle.Message(key) != nil {
			return bundle.FormatMessage(key, options...)
		}
	}
	return "", nil, fmt.Errorf("message '%s' does not exist in any bundle", key)
}
