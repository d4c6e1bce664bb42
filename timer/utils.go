package timer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxSeconds caps a single countdown.
const MaxSeconds = 24 * 60 * 60

// ErrUnreadableDuration is returned by ParseDuration when the input holds
// no usable number. It wraps ErrInvalidDuration.
var ErrUnreadableDuration = fmt.Errorf("%w: unreadable", ErrInvalidDuration)

// FormatTime converts a number of seconds into a mm:ss string format.
func FormatTime(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// ParseDuration reads a typed or spoken duration and returns seconds.
// Accepted forms: "90", "1:30", "10 seconds", "2 minutes 30 seconds",
// "1 hour". A bare number counts as seconds.
func ParseDuration(input string) (int, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return 0, fmt.Errorf("%w: empty input", ErrUnreadableDuration)
	}

	var (
		val int
		err error
	)
	switch {
	case strings.Contains(input, ":"):
		val, err = parseClock(input)
	default:
		val, err = parsePhrase(input)
	}
	if err != nil {
		return 0, err
	}
	if val <= 0 || val > MaxSeconds {
		return 0, fmt.Errorf("%w: %d seconds", ErrInvalidDuration, val)
	}
	return val, nil
}

func parseClock(input string) (int, error) {
	parts := strings.Split(input, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: invalid time format %q", ErrUnreadableDuration, input)
	}
	min, ok := clampedNumber(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnreadableDuration, input)
	}
	sec, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("%w: invalid seconds (must be 0-59)", ErrUnreadableDuration)
	}
	return addClamped(min*60, sec), nil
}

// parsePhrase walks number/unit pairs. A number without a following unit
// is taken as seconds.
func parsePhrase(input string) (int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '.'
	})

	total := 0
	pending := -1
	found := false
	for _, f := range fields {
		if n, ok := leadingNumber(f); ok {
			if pending >= 0 {
				total = addClamped(total, pending)
			}
			pending = n
			found = true
			f = strings.TrimLeft(f, "0123456789")
			if f == "" {
				continue
			}
		}
		mult, ok := unitSeconds(f)
		if !ok || pending < 0 {
			continue
		}
		total = addClamped(total, pending*mult)
		pending = -1
	}
	if pending >= 0 {
		total = addClamped(total, pending)
	}
	if !found {
		return 0, fmt.Errorf("%w: no number in %q", ErrUnreadableDuration, input)
	}
	return total, nil
}

func leadingNumber(s string) (int, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return clampedNumber(s[:end])
}

// clampedNumber reads an unsigned decimal. Values above MaxSeconds come
// back as MaxSeconds+1 so they fail the range check instead of wrapping.
func clampedNumber(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > MaxSeconds {
			return MaxSeconds + 1, true
		}
	}
	return n, true
}

// addClamped sums two non-negative amounts, saturating at MaxSeconds+1.
func addClamped(a, b int) int {
	if a+b > MaxSeconds {
		return MaxSeconds + 1
	}
	return a + b
}

func unitSeconds(word string) (int, bool) {
	switch word {
	case "s", "sec", "secs", "second", "seconds":
		return 1, true
	case "m", "min", "mins", "minute", "minutes":
		return 60, true
	case "h", "hr", "hrs", "hour", "hours":
		return 3600, true
	}
	return 0, false
}
