// Package format renders amounts, dates and countdowns for an account's
// locale and currency.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when an account's locale cannot be parsed.
const DefaultLocale = "en-US"

// dateLayouts lists supported language families with a layout holding the
// fields weekday, day, short month, year, hour and minute. The first entry is
// the fallback.
var dateLayouts = []struct {
	tag    language.Tag
	layout string
}{
	{language.AmericanEnglish, "Mon, Jan 02, 2006, 03:04 PM"},
	{language.BritishEnglish, "Mon 02 Jan 2006, 15:04"},
	{language.EuropeanPortuguese, "Mon, 02/01/2006, 15:04"},
	{language.German, "Mon, 02.01.2006, 15:04"},
	{language.French, "Mon 02 Jan 2006 15:04"},
	{language.Arabic, "Mon، 02 Jan 2006، 15:04"},
}

var dateMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(dateLayouts))
	for i, l := range dateLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// Tag parses a BCP 47 locale, falling back to DefaultLocale.
func Tag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.MustParse(DefaultLocale)
	}
	return tag
}

// Currency formats value in the given ISO 4217 currency with the
// locale's digits, separators and symbol position, and the currency's
// minor units. The amount is never converted to a float.
func Currency(value decimal.Decimal, locale, code string) string {
	code = strings.ToUpper(code)
	tag := Tag(locale)

	symbol, fraction := code, 2
	if c := money.GetCurrency(code); c != nil {
		symbol, fraction = c.Grapheme, c.Fraction
	}
	base, _ := tag.Base()
	if local, ok := localSymbols[base.String()][code]; ok {
		symbol = local
	}

	rounded := value.Round(int32(fraction))
	digits := symbolsFor(tag).format(rounded.Abs(), int32(fraction), minGrouping(tag))

	var out string
	switch {
	case symbolAfter(tag):
		out = digits + nbsp + symbol
	case endsWithLetter(symbol):
		out = symbol + nbsp + digits
	default:
		out = symbol + digits
	}
	if rounded.IsNegative() {
		out = "-" + out
	}
	return out
}

const nbsp = "\u00a0"

// localSymbols overrides the currency symbol for a language.
var localSymbols = map[string]map[string]string{
	"ar": {"EGP": "ج.م.\u200f"},
}

// symbolAfter reports whether the locale writes the currency symbol after
// the amount.
func symbolAfter(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "pt":
		region, _ := tag.Region()
		return region.String() != "BR"
	case "ar", "cs", "de", "es", "fi", "fr", "it", "pl", "ru", "sv":
		return true
	}
	return false
}

// minGrouping is the number of digits the integer part must have above the
// first group before separators are used: 1300 stays ungrouped in es and pt-PT.
func minGrouping(tag language.Tag) int {
	base, _ := tag.Base()
	switch base.String() {
	case "es", "pl":
		return 2
	case "pt":
		region, _ := tag.Region()
		if region.String() != "BR" {
			return 2
		}
	}
	return 1
}

func endsWithLetter(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsLetter(r)
}

// numberSymbols holds a locale's digits and separators.
type numberSymbols struct {
	digits  [10]string
	group   string
	decimal string
}

var symbolCache sync.Map

// symbolsFor reads the locale's digits and separators back from the x/text
// number printer.
func symbolsFor(tag language.Tag) numberSymbols {
	key := tag.String()
	if v, ok := symbolCache.Load(key); ok {
		return v.(numberSymbols)
	}

	p := message.NewPrinter(tag)
	ns := numberSymbols{decimal: "."}
	isDigit := make(map[rune]bool)
	for d := range ns.digits {
		ns.digits[d] = p.Sprint(number.Decimal(d))
		if utf8.RuneCountInString(ns.digits[d]) != 1 {
			ns.digits[d] = strconv.Itoa(d)
		}
		r, _ := utf8.DecodeRuneInString(ns.digits[d])
		isDigit[r] = true
	}

	// Separators are the runs of non-digits between digits of 1,234,567.5.
	var runs []string
	var cur strings.Builder
	seen := false
	for _, r := range p.Sprint(number.Decimal(1234567.5, number.Scale(1))) {
		if isDigit[r] {
			if seen && cur.Len() > 0 {
				runs = append(runs, cur.String())
			}
			cur.Reset()
			seen = true
			continue
		}
		cur.WriteRune(r)
	}
	if n := len(runs); n > 0 {
		ns.decimal = runs[n-1]
		if n > 1 {
			ns.group = runs[0]
		}
	}

	symbolCache.Store(key, ns)
	return ns
}

func (ns numberSymbols) format(value decimal.Decimal, fraction int32, minGroup int) string {
	intPart, fracPart, _ := strings.Cut(value.StringFixed(fraction), ".")

	var b strings.Builder
	grouped := ns.group != "" && len(intPart) >= 3+minGroup
	for i := 0; i < len(intPart); i++ {
		if grouped && i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(ns.group)
		}
		b.WriteString(ns.digits[intPart[i]-'0'])
	}
	if fracPart != "" {
		b.WriteString(ns.decimal)
		for i := 0; i < len(fracPart); i++ {
			b.WriteString(ns.digits[fracPart[i]-'0'])
		}
	}
	return b.String()
}

// Date formats t for the locale. Weekday and month names stay in English.
func Date(t time.Time, locale string) string {
	_, idx, _ := dateMatcher.Match(Tag(locale))
	return t.Format(dateLayouts[idx].layout)
}

// Countdown renders seconds as MM:SS.
func Countdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
