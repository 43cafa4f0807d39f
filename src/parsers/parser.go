package parsers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/username/moneydash/backend/src/models"
)

// File formats detected by content sniffing. Banks save xlsx workbooks
// under a .csv extension, so the extension is never trusted.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// xlsx workbooks are ZIP containers; this is the ZIP local-file-header
// signature.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// LoadResult is the outcome of loading one export file: the valid
// transactions plus the rows that had to be skipped and why.
type LoadResult struct {
	Transactions []models.Transaction
	RowsSkipped  int
	RowIssues    []models.RowIssue
}

// Parser loads a tabular export file into canonical transactions.
// raw supplies the account identity decoded from the filename.
type Parser interface {
	Parse(file io.Reader, raw models.RawFile) (*LoadResult, error)
}

// DetectFormat sniffs the true file format from leading content bytes.
func DetectFormat(file io.ReadSeeker) (string, error) {
	header := make([]byte, len(zipMagic))
	n, err := file.Read(header)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file header for format detection: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}
	if bytes.Equal(header[:n], zipMagic) {
		return FormatXLSX, nil
	}
	return FormatCSV, nil
}

// GetParser returns the parser for a detected format.
func GetParser(format string) (Parser, error) {
	switch format {
	case FormatCSV:
		return NewCSVParser(), nil
	case FormatXLSX:
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for format: %s", format)
	}
}
