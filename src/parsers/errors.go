package parsers

import (
	"fmt"
	"strings"
)

// MalformedFilenameError reports a filename that does not match the
// export naming convention, naming the segment that failed. The file is
// skipped and the run continues.
type MalformedFilenameError struct {
	FileName string
	Segment  string // "prefix", "extension", "account segment", "bank", "account type", "last4", "start date", "end date"
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("malformed filename %q: bad %s", e.FileName, e.Segment)
}

// SchemaError reports a file missing one or more required columns. The
// whole file is skipped and the run continues.
type SchemaError struct {
	FileName       string
	MissingColumns []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("file %q missing required column(s): %s", e.FileName, strings.Join(e.MissingColumns, ", "))
}
