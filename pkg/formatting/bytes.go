// Package formatting converts between human-readable value notations
// and machine values, covering byte sizes and lenient JSON extraction.
package formatting

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const kilo = 1024.0

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

var bytesPattern = regexp.MustCompile(`^(\d+\.?\d*)\s*([A-Za-z]*)$`)

// FormatBytes renders a byte count in the largest base-1024 unit that
// keeps the value at or above one. Negative precision is treated as
// zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	precision = max(precision, 0)

	exp := min(
		int(math.Floor(math.Log(float64(n))/math.Log(kilo))),
		len(units)-1,
	)

	size := float64(n) / math.Pow(kilo, float64(exp))
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[exp]
}

// ParseBytes reads a byte size such as "50MB" or "1.5 GB" into a byte
// count. Units are base-1024 and case-insensitive, the space before
// the unit is optional, and a bare number means bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	matches := bytesPattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	unit := strings.ToUpper(matches[2])
	if unit == "" {
		return int64(value), nil
	}

	for exp, candidate := range units {
		if candidate == unit {
			return int64(value * math.Pow(kilo, float64(exp))), nil
		}
	}

	return 0, fmt.Errorf("unknown byte size unit: %q", unit)
}
