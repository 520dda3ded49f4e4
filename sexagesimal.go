package indiclient

import (
	"strconv"
	"strings"
)

// parseIndiFloat parses an INDI number token, which may be a plain decimal
// double or sexagesimal notation (sdd:mm:ss.ss, sdd:mm:ss, or sdd:mm; the
// separator may be ':' or a single space, and a leading sign is optional).
//
// See spec.md's open question on Number values: the protocol allows
// sexagesimal on the wire even though a plain decoder only expects plain
// decimal.
func parseIndiFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}

	sep := ":"
	if !strings.Contains(s, ":") {
		sep = " "
	}

	negative := false
	rest := s
	switch rest[0] {
	case '-':
		negative = true
		rest = rest[1:]
	case '+':
		rest = rest[1:]
	}

	parts := strings.Split(rest, sep)
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var components [3]float64
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		components[i] = v
	}

	value := components[0] + components[1]/60 + components[2]/3600
	if negative {
		value = -value
	}
	return value, true
}

// formatIndiFloat formats a float the way the encoder writes numeric
// values back onto the wire: always plain decimal, never sexagesimal,
// per spec.md's resolution of that open question.
func formatIndiFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
