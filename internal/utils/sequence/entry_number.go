package sequence

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultManualPrefix numbers user-entered journal entries.
	DefaultManualPrefix = "JE"
	// DefaultAutoPrefix numbers entries generated by other modules.
	DefaultAutoPrefix = "AJ"
)

// PeriodKey returns the counter key for prefix and date, e.g. "JE-202501".
// Each key owns an independent, gapless sequence starting at 1.
func PeriodKey(prefix string, date time.Time) string {
	return fmt.Sprintf("%s-%04d%02d", prefix, date.Year(), int(date.Month()))
}

// FormatEntryNumber returns an entry number like "JE-202501-0001".
func FormatEntryNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%04d", PeriodKey(prefix, date), seq)
}

// CompareEntryNumbers orders entry numbers numerically within a prefix and
// period: a longer number sorts after a shorter one, so "JE-202501-10000"
// follows "JE-202501-9999". Stores order by (length, text) to match.
func CompareEntryNumbers(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// ParseEntryNumber parses "JE-202501-0001" into prefix, year, month and seq.
func ParseEntryNumber(number string) (prefix string, year, month int, seq int64, err error) {
	parts := strings.Split(number, "-")
	if len(parts) != 3 || parts[0] == "" || len(parts[1]) != 6 {
		return "", 0, 0, 0, fmt.Errorf("invalid entry number format: %q", number)
	}

	year, err = strconv.Atoi(parts[1][:4])
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid year in entry number %q: %w", number, err)
	}
	month, err = strconv.Atoi(parts[1][4:])
	if err != nil || month < 1 || month > 12 {
		return "", 0, 0, 0, fmt.Errorf("invalid month in entry number %q", number)
	}
	seq, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, 0, fmt.Errorf("invalid sequence in entry number %q: %w", number, err)
	}
	return parts[0], year, month, seq, nil
}
