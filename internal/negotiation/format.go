package negotiation

import (
	"math"
	"strconv"
	"strings"
)

// FormatCostDelta renders a cost delta for notifications and comparison
// views: sign prefix (`+` for non-negative), dollar sign, absolute value
// with thousands separators. FormatCostDelta(5000) == "+$5,000".
func FormatCostDelta(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + "$" + thousands(math.Abs(v))
}

// FormatWeeksDelta renders a week delta with its sign and natural
// magnitude. FormatWeeksDelta(2) == "+2 weeks"; FormatWeeksDelta(-1.5) ==
// "-1.5 weeks".
func FormatWeeksDelta(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return sign + strconv.FormatFloat(math.Abs(v), 'f', -1, 64) + " weeks"
}

// thousands formats a non-negative number with comma separators in the
// integer part, preserving any fractional digits.
func thousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	n := len(intPart)
	if n > 3 {
		var b strings.Builder
		lead := n % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < n; i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	if hasFrac {
		return intPart + "." + fracPart
	}
	return intPart
}
