package fluent

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// Function represents a callable that builds a Value from the resolved call
// arguments. The locale is always injected by the resolver and holds the
// primary locale of the bundle the call originates from.
// A function may fail by returning an error or by panicking; both are caught
// by the resolver and turned into a placeholder plus a recorded error.
type Function func(positional []Value, named map[string]Value, locale language.Tag) (Value, error)

// A Value is the result of a resolving operation performed by the resolver.
// It represents either a string, a number, a date time or a placeholder for
// something that could not be resolved.
type Value interface {
	String() string
}

// StringValue wraps a string in order to comply with the Value API
type StringValue struct {
	Value string
}

// String returns the wrapped value of a StringValue
func (value *StringValue) String() string {
	return value.Value
}

// String returns a new StringValue with the given value; used for variables
func String(val string) *StringValue {
	return &StringValue{
		Value: val,
	}
}

// NumberValue wraps a number together with the display precision it carries.
// Precision is the amount of fractional digits the number was declared with;
// it drives display formatting and exact-match semantics in selectors.
type NumberValue struct {
	Value     float64
	Precision int
}

// String formats a NumberValue into a string.
// A declared precision renders exactly that many fractional digits.
// Without one, integral values render as integer text and anything else
// falls back to the shortest float representation.
func (value *NumberValue) String() string {
	if value.Precision > 0 {
		return strconv.FormatFloat(value.Value, 'f', value.Precision, 64)
	}
	if value.Value == math.Trunc(value.Value) && !math.IsInf(value.Value, 0) {
		return strconv.FormatInt(int64(value.Value), 10)
	}
	return strconv.FormatFloat(value.Value, 'f', -1, 64)
}

// Number returns a new NumberValue with the given value; used for variables
func Number(val float64) *NumberValue {
	return &NumberValue{
		Value: val,
	}
}

// TimeValue wraps a point in time in order to comply with the Value API.
// It is the value type the DATETIME function operates on.
type TimeValue struct {
	Value time.Time
}

// String formats a TimeValue into its RFC 3339 representation
func (value *TimeValue) String() string {
	return value.Value.Format(time.RFC3339)
}

// Time returns a new TimeValue with the given value; used for variables
func Time(val time.Time) *TimeValue {
	return &TimeValue{
		Value: val,
	}
}

// NoValue is used whenever no "real" value could be built.
// Its string form is the braced placeholder substituted into the output.
type NoValue struct {
	value string
}

// String returns the NoValue's placeholder representation
func (value *NoValue) String() string {
	return "{" + value.value + "}"
}
