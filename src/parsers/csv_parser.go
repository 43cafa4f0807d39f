package parsers

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
)

type CSVParser struct{}

func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

func (p *CSVParser) Parse(file io.Reader, raw models.RawFile) (*LoadResult, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}
	if len(records) == 0 {
		return nil, &SchemaError{FileName: raw.FileName, MissingColumns: []string{"Date", "Amount", "Description"}}
	}

	// Some banks prepend summary lines before the header; scan for the
	// header row the same way the workbook parser does.
	headerIdx := 0
	for i, record := range records {
		if isHeaderRow(record) {
			headerIdx = i
			break
		}
	}

	cols, missing := mapColumns(records[headerIdx])
	if len(missing) > 0 {
		return nil, &SchemaError{FileName: raw.FileName, MissingColumns: missing}
	}

	result := &LoadResult{}
	for i, record := range records[headerIdx+1:] {
		rowNum := i + 1
		if rowEmpty(record) {
			continue
		}
		tx, err := buildTransaction(cols, record, raw, rowNum)
		if err != nil {
			logger.L.Debug("Skipping row", "file", raw.FileName, "row", rowNum, "reason", err)
			result.RowsSkipped++
			result.RowIssues = append(result.RowIssues, models.RowIssue{
				FileName: raw.FileName,
				Row:      rowNum,
				Reason:   err.Error(),
			})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result, nil
}
