package currency

import (
	"fmt"
	"math"
	"strings"
)

// FormatEUR renders an amount as "EUR 1,234.50".
func FormatEUR(amount float64) string {
	return Format(amount, "EUR")
}

func Format(amount float64, code string) string {
	cents := math.Round(amount * 100)

	negative := cents < 0
	if negative {
		cents = -cents
	}

	units := math.Floor(cents / 100)
	fraction := int(cents - units*100)

	intStr := fmt.Sprintf("%.0f", units)
	formatted := addThousandsSeparator(intStr, ",")

	result := fmt.Sprintf("%s %s.%02d", strings.ToUpper(code), formatted, fraction)
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
