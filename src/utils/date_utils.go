package utils

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts seen across bank exports. Tried in order; the first one
// that parses wins.
var transactionDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"01/02/06",
}

// ParseTransactionDate parses a transaction date in any of the accepted
// layouts. Returns an error naming the value when no layout matches.
func ParseTransactionDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", dateStr)
}

// FilenameDateLayout is the date format used inside export filenames.
const FilenameDateLayout = "2006.01.02"
