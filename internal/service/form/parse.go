package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Alijeyrad/formsbot/pkg/constants"
)

// ParseYesNo reads a free-text Yes/No field. Anything starting with "y"
// (ignoring case) is yes. exact is false when the text was neither "yes" nor
// "no", so callers can tell the user how it was interpreted.
func ParseYesNo(s string) (yes bool, exact bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(v, "y"), v == "yes" || v == "no"
}

// FormatYesNo is the inverse of ParseYesNo for pre-filling dialogs.
func FormatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ParseLengthRange parses "(min)-(max)". An empty string clears both bounds.
func ParseLengthRange(s string) (minLen, maxLen *int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil, nil
	}

	lo, hi, ok := strings.Cut(s, "-")
	if !ok || lo == "" || hi == "" || strings.Contains(hi, "-") {
		return nil, nil, ErrInvalidLength
	}
	mn, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return nil, nil, ErrInvalidLength
	}
	mx, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return nil, nil, ErrInvalidLength
	}
	if err := validateLengths(&mn, &mx); err != nil {
		return nil, nil, err
	}
	return &mn, &mx, nil
}

// FormatLengthRange renders bounds the way ParseLengthRange reads them.
func FormatLengthRange(minLen, maxLen *int) string {
	if minLen == nil && maxLen == nil {
		return ""
	}
	var lo, hi string
	if minLen != nil {
		lo = strconv.Itoa(*minLen)
	}
	if maxLen != nil {
		hi = strconv.Itoa(*maxLen)
	}
	return lo + "-" + hi
}

// ParseChannelID accepts a raw channel snowflake. An empty string means no
// channel.
func ParseChannelID(s string) (*string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return nil, ErrInvalidChannel
	}
	return &s, nil
}

func validateLengths(minLen, maxLen *int) error {
	if minLen != nil && (*minLen < 0 || *minLen > constants.MaxAnswerLength) {
		return ErrInvalidLength
	}
	if maxLen != nil {
		floor := 1
		if minLen != nil && *minLen > floor {
			floor = *minLen
		}
		if *maxLen < floor || *maxLen > constants.MaxAnswerLength {
			return ErrInvalidLength
		}
	}
	return nil
}

func checkText(field, s string, limit int, required bool) error {
	n := len([]rune(s))
	if required && strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if n > limit {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, limit)
	}
	return nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// suffixed returns "base (n)" trimmed so the result fits in limit runes.
func suffixed(base string, n, limit int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	r := []rune(base)
	if room := limit - len([]rune(suffix)); len(r) > room {
		r = r[:max(room, 0)]
	}
	return string(r) + suffix
}
