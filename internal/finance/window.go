package finance

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseWindow maps a user window (10d, 3w, 6m, 2y) to a Yahoo range parameter and
// the number of calendar days to keep. Empty means one year.
func ParseWindow(window string) (string, int, error) {
	if window == "" {
		return "1y", 365, nil
	}
	window = strings.ToLower(strings.TrimSpace(window))

	num := func(suffix string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimSuffix(window, suffix))
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}

	switch {
	case strings.HasSuffix(window, "d"):
		n, ok := num("d")
		if !ok {
			return "1mo", 30, nil
		}
		switch {
		case n <= 5:
			return "5d", n, nil
		case n <= 30:
			return "1mo", n, nil
		case n <= 90:
			return "3mo", n, nil
		default:
			return "1y", n, nil
		}

	case strings.HasSuffix(window, "w"):
		n, ok := num("w")
		if !ok {
			return "1mo", 21, nil
		}
		days := n * 7
		switch {
		case n <= 1:
			return "5d", days, nil
		case n <= 4:
			return "1mo", days, nil
		case n <= 12:
			return "3mo", days, nil
		case n <= 26:
			return "6mo", days, nil
		default:
			return "1y", days, nil
		}

	case strings.HasSuffix(window, "m"):
		n, ok := num("m")
		if !ok {
			return "1y", 365, nil
		}
		days := n * 30
		switch {
		case n <= 1:
			return "1mo", days, nil
		case n <= 3:
			return "3mo", days, nil
		case n <= 6:
			return "6mo", days, nil
		case n <= 12:
			return "1y", days, nil
		case n <= 24:
			return "2y", days, nil
		default:
			return "5y", days, nil
		}

	case strings.HasSuffix(window, "y"):
		n, ok := num("y")
		if !ok {
			return "1y", 365, nil
		}
		days := n * 365
		switch {
		case n <= 1:
			return "1y", days, nil
		case n <= 2:
			return "2y", days, nil
		case n <= 5:
			return "5y", days, nil
		case n <= 10:
			return "10y", days, nil
		default:
			return "max", days, nil
		}

	default:
		return "", 0, fmt.Errorf("invalid window format: %s (use format like 1d, 1w, 1m, 1y)", window)
	}
}

// IsWindow reports whether s parses as a window token.
func IsWindow(s string) bool {
	if s == "" {
		return false
	}
	last := s[len(s)-1]
	if !strings.ContainsRune("dwmyDWMY", rune(last)) {
		return false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	return err == nil && n > 0
}
