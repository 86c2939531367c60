// Package money holds the rounding, display and parsing rules shared by
// every engine. Amounts are decimals rounded to the cent, half away from zero.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Places is the number of decimal places kept on every monetary total.
const Places = 2

// ErrInvalidNumber is returned when a string is not a French or plain decimal number.
var ErrInvalidNumber = errors.New("invalid number")

var frPrinter = message.NewPrinter(language.French)

// Round2 rounds d to the cent.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Sum adds amounts, rounding the result to the cent.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round2(total)
}

// FormatPlain renders d with French grouping and comma decimals, e.g. "1 234,56".
// Only the integer part goes through the locale printer, so cents are exact
// at any magnitude.
func FormatPlain(d decimal.Decimal) string {
	r := Round2(d)
	whole, cents, _ := strings.Cut(r.Abs().StringFixed(Places), ".")

	var grouped string
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		grouped = frPrinter.Sprint(number.Decimal(n))
	} else {
		grouped = groupThousands(whole)
	}

	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	return sign + grouped + "," + cents
}

// groupThousands inserts a narrow no-break space every three digits, as the
// French locale does.
func groupThousands(digits string) string {
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune('\u202f')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Format renders d as a euro amount for display, e.g. "1 234,56 €".
func Format(d decimal.Decimal) string {
	return FormatPlain(d) + " €"
}

// Parse reads an amount typed the French way ("1 234,56", "1.234,56 €")
// or the plain way ("1234.56").
func Parse(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimPrefix(s, "€")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\t', '\'':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if !isPlainDecimal(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return d, nil
}

// isPlainDecimal accepts an optional sign, digits and at most one dot.
func isPlainDecimal(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	if s == "" || s == "." {
		return false
	}
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots <= 1
}
