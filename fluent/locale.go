package fluent

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pluralStrings = map[plural.Form]string{
	plural.Other: "other",
	plural.Zero:  "zero",
	plural.One:   "one",
	plural.Two:   "two",
	plural.Few:   "few",
	plural.Many:  "many",
}

// pluralCategoryFor returns the CLDR cardinal plural category name of a
// number for a single locale. The number's declared precision participates
// in the lookup ('1' and '1.0' may fall into different categories).
func pluralCategoryFor(locale language.Tag, num *NumberValue) (string, error) {
	formatted := strconv.FormatFloat(math.Abs(num.Value), 'f', num.Precision, 64)
	intPart, fracPart, _ := strings.Cut(formatted, ".")

	digits := make([]byte, 0, len(intPart)+len(fracPart))
	for _, digit := range intPart + fracPart {
		if digit < '0' || digit > '9' {
			return "", fmt.Errorf("cannot derive plural digits from '%s'", formatted)
		}
		digits = append(digits, byte(digit-'0'))
	}

	form := plural.Cardinal.MatchDigits(locale, digits, len(intPart), len(fracPart))
	category, ok := pluralStrings[form]
	if !ok {
		return "", fmt.Errorf("unknown plural form %d for locale %s", form, locale)
	}
	return category, nil
}

// PrinterCache caches one message printer per locale.
// Building a printer walks the CLDR data, so bundles share formatters
// through this cache instead of rebuilding them per format call.
// It is safe for concurrent use and may be shared between bundles by
// injecting it via WithPrinterCache.
type PrinterCache struct {
	mu       sync.RWMutex
	printers map[language.Tag]*message.Printer
}

// NewPrinterCache creates a new empty printer cache
func NewPrinterCache() *PrinterCache {
	return &PrinterCache{
		printers: make(map[language.Tag]*message.Printer),
	}
}

// Printer returns the cached printer for the given locale, creating it on first use
func (cache *PrinterCache) Printer(locale language.Tag) *message.Printer {
	cache.mu.RLock()
	printer := cache.printers[locale]
	cache.mu.RUnlock()
	if printer != nil {
		return printer
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if printer := cache.printers[locale]; printer != nil {
		return printer
	}
	printer = message.NewPrinter(locale)
	cache.printers[locale] = printer
	return printer
}
