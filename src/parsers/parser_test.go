package parsers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	csvContent := strings.NewReader("Date,Description,Amount\n2025-01-05,COFFEE,-4.50\n")
	format, err := DetectFormat(csvContent)
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	// The reader must be reset so the parser sees the full content.
	first := make([]byte, 4)
	_, err = csvContent.Read(first)
	require.NoError(t, err)
	assert.Equal(t, "Date", string(first))

	xlsxContent := bytes.NewReader([]byte{0x50, 0x4b, 0x03, 0x04, 0x14, 0x00})
	format, err = DetectFormat(xlsxContent)
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
}

func TestGetParser(t *testing.T) {
	p, err := GetParser(FormatCSV)
	require.NoError(t, err)
	assert.IsType(t, &CSVParser{}, p)

	p, err = GetParser(FormatXLSX)
	require.NoError(t, err)
	assert.IsType(t, &XLSXParser{}, p)

	_, err = GetParser("pdf")
	assert.Error(t, err)
}

func TestXLSXParserParse(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	rows := [][]interface{}{
		{"Date", "Description", "Amount", "Running Bal."},
		{"2025-01-05", "NETFLIX.COM", "-15.49", "984.51"},
		{"2025-01-06", "PAYCHECK ACME", "2500.00", "3484.51"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cellRef, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))
	data := buf.Bytes()

	result, err := NewXLSXParser().Parse(bytes.NewReader(data), testRawFile())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "NETFLIX.COM", result.Transactions[0].Description)
	assert.Equal(t, "-15.49", result.Transactions[0].Amount.StringFixed(2))

	// The workbook is a ZIP container, so sniffing on the same bytes
	// must pick the workbook parser even under a .csv name.
	format, err := DetectFormat(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
}
