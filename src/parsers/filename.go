package parsers

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/username/moneydash/backend/src/models"
	"github.com/username/moneydash/backend/src/utils"
)

// Export filenames follow the pattern
//
//	transaction(s)-raw-import-{bank}_{accountType}_{last4}-{start}-{end}.csv
//
// with dates as YYYY.MM.DD, e.g.
// transactions-raw-import-boa_chk_7259-2025.01.01-2025.03.31.csv.

var (
	bankTokenPattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	last4Pattern     = regexp.MustCompile(`^\d{4}$`)
)

func validFileAccountType(s string) bool {
	return s == models.FileAccountChecking || s == models.FileAccountCreditCard
}

// DecodeFilename parses an export filename into a RawFile descriptor.
// Side-effect-free; the returned Path is empty and is filled in by the
// directory scan.
func DecodeFilename(fileName string) (models.RawFile, error) {
	name := fileName
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".csv") {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "extension"}
	}
	name = name[:len(name)-len(".csv")]

	var rest string
	switch {
	case strings.HasPrefix(name, "transactions-raw-import-"):
		rest = strings.TrimPrefix(name, "transactions-raw-import-")
	case strings.HasPrefix(name, "transaction-raw-import-"):
		rest = strings.TrimPrefix(name, "transaction-raw-import-")
	default:
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "prefix"}
	}

	parts := strings.Split(rest, "-")
	if len(parts) != 3 {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "account segment"}
	}

	accountParts := strings.Split(parts[0], "_")
	if len(accountParts) != 3 {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "account segment"}
	}
	bank, accountType, last4 := accountParts[0], accountParts[1], accountParts[2]

	if !bankTokenPattern.MatchString(bank) {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "bank"}
	}
	if !validFileAccountType(accountType) {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "account type"}
	}
	if !last4Pattern.MatchString(last4) {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "last4"}
	}

	periodStart, err := time.Parse(utils.FilenameDateLayout, parts[1])
	if err != nil {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "start date"}
	}
	periodEnd, err := time.Parse(utils.FilenameDateLayout, parts[2])
	if err != nil {
		return models.RawFile{}, &MalformedFilenameError{FileName: fileName, Segment: "end date"}
	}

	return models.RawFile{
		FileName:    fileName,
		Bank:        bank,
		AccountType: accountType,
		Last4:       last4,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}, nil
}

// EncodeFilename builds the canonical export filename for a RawFile.
// Round-trips with DecodeFilename for any valid descriptor.
func EncodeFilename(raw models.RawFile) string {
	return fmt.Sprintf("transactions-raw-import-%s_%s_%s-%s-%s.csv",
		raw.Bank, raw.AccountType, raw.Last4,
		raw.PeriodStart.Format(utils.FilenameDateLayout),
		raw.PeriodEnd.Format(utils.FilenameDateLayout))
}
