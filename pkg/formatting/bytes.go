// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration and error messages.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const unitBase = 1024

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with the largest base-1024 unit that keeps the
// value at or above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for math.Abs(size) >= unitBase && i < len(units)-1 {
		size /= unitBase
		i++
	}

	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads sizes such as "50MB", "1.5 kb", "2KiB" or "2048". A
// bare number is a byte count. Units are base-1024 and case-insensitive.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	exp, err := unitExponent(unit)
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(unitBase, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size overflows int64: %q", s)
	}
	return int64(bytes), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	u = strings.Replace(u, "IB", "B", 1)
	if !strings.HasSuffix(u, "B") {
		u += "B"
	}
	for i, name := range units {
		if name == u {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
