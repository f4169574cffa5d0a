package fluent

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/number"
)

// builtinFunctions assembles the functions every bundle registers by default
func builtinFunctions(printers *PrinterCache) map[string]Function {
	return map[string]Function{
		"NUMBER":   numberFunction(printers),
		"DATETIME": datetimeFunction(),
	}
}

// numberFunction builds the NUMBER built-in on top of the given printer cache.
// It formats a numeric value according to the locale's number conventions.
// Supported options: style ('decimal', 'percent' or 'currency'), currency
// (ISO 4217 code, required for the currency style), minimumFractionDigits
// and maximumFractionDigits.
func numberFunction(printers *PrinterCache) Function {
	return func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		if len(positional) != 1 {
			return nil, fmt.Errorf("exactly one positional argument is required")
		}
		num, ok := positional[0].(*NumberValue)
		if !ok {
			return nil, fmt.Errorf("the positional argument has to be a number")
		}

		var options []number.Option
		if digits, ok := namedInt(named, "minimumFractionDigits"); ok {
			options = append(options, number.MinFractionDigits(digits))
		} else if num.Precision > 0 {
			options = append(options, number.MinFractionDigits(num.Precision))
		}
		if digits, ok := namedInt(named, "maximumFractionDigits"); ok {
			options = append(options, number.MaxFractionDigits(digits))
		}

		printer := printers.Printer(locale)
		style, _ := namedString(named, "style")
		switch style {
		case "", "decimal":
			return String(printer.Sprint(number.Decimal(num.Value, options...))), nil
		case "percent":
			return String(printer.Sprint(number.Percent(num.Value, options...))), nil
		case "currency":
			code, ok := namedString(named, "currency")
			if !ok {
				return nil, fmt.Errorf("the currency style requires a currency option")
			}
			unit, err := currency.ParseISO(code)
			if err != nil {
				return nil, fmt.Errorf("'%s' is no valid currency code", code)
			}
			return String(printer.Sprint(currency.Symbol(unit.Amount(num.Value)))), nil
		default:
			return nil, fmt.Errorf("unknown style '%s'", style)
		}
	}
}

var dateLayouts = map[string]string{
	"full":   "Monday, January 2, 2006",
	"long":   "January 2, 2006",
	"medium": "Jan 2, 2006",
	"short":  "1/2/06",
}

var timeLayouts = map[string]string{
	"full":   "3:04:05 PM MST",
	"long":   "3:04:05 PM MST",
	"medium": "3:04:05 PM",
	"short":  "3:04 PM",
}

// datetimeFunction builds the DATETIME built-in.
// It formats a datetime value (or an RFC 3339 string) according to the
// dateStyle and timeStyle options ('full', 'long', 'medium' or 'short').
// Without any style option the medium date style is used.
func datetimeFunction() Function {
	return func(positional []Value, named map[string]Value, locale language.Tag) (Value, error) {
		if len(positional) != 1 {
			return nil, fmt.Errorf("exactly one positional argument is required")
		}

		var when time.Time
		switch val := positional[0].(type) {
		case *TimeValue:
			when = val.Value
		case *StringValue:
			parsed, err := time.Parse(time.RFC3339, val.Value)
			if err != nil {
				return nil, fmt.Errorf("'%s' is no valid RFC 3339 timestamp", val.Value)
			}
			when = parsed
		default:
			return nil, fmt.Errorf("the positional argument has to be a datetime")
		}

		dateStyle, hasDateStyle := namedString(named, "dateStyle")
		timeStyle, hasTimeStyle := namedString(named, "timeStyle")
		if !hasDateStyle && !hasTimeStyle {
			dateStyle, hasDateStyle = "medium", true
		}

		layout := ""
		if hasDateStyle {
			dateLayout, ok := dateLayouts[dateStyle]
			if !ok {
				return nil, fmt.Errorf("unknown dateStyle '%s'", dateStyle)
			}
			layout = dateLayout
		}
		if hasTimeStyle {
			timeLayout, ok := timeLayouts[timeStyle]
			if !ok {
				return nil, fmt.Errorf("unknown timeStyle '%s'", timeStyle)
			}
			if layout != "" {
				layout += ", "
			}
			layout += timeLayout
		}

		return String(when.Format(layout)), nil
	}
}

// namedString extracts a named option in its string form
func namedString(named map[string]Value, key string) (string, bool) {
	value, ok := named[key]
	if !ok {
		return "", false
	}
	return value.String(), true
}

// namedInt extracts a numeric named option
func namedInt(named map[string]Value, key string) (int, bool) {
	num, ok := named[key].(*NumberValue)
	if !ok {
		return 0, false
	}
	return int(num.Value), true
}
