package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// parseAmount parses a locale-free decimal with optional thousands commas
// and an optional K/M/B suffix (x1e3, x1e6, x1e9). Leading $ is accepted.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	mult := 1.0
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult = 1e3
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult = 1e6
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "B"), strings.HasSuffix(s, "b"):
		mult = 1e9
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v * mult, nil
}

// trimNumericJunk strips punctuation that rides along with numeric tokens
// when a line is split on whitespace.
func trimNumericJunk(s string) string {
	return strings.Trim(s, "()$,:;")
}
