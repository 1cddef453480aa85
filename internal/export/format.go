package export

import (
	"math"
	"strconv"
	"strings"
)

// Currency renders v as whole US dollars, e.g. "$1,250,000".
func Currency(v float64) string {
	rounded := math.Round(v)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "$" + groupDigits(strconv.FormatFloat(rounded, 'f', 0, 64))
}

// Count renders n with thousands separators.
func Count(n int) string {
	if n < 0 {
		return "-" + groupDigits(strconv.Itoa(-n))
	}
	return groupDigits(strconv.Itoa(n))
}

// Percent renders a rate with two decimals, e.g. "12.50%".
func Percent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64) + "%"
}

func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
