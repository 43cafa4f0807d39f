package parsers

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func testRawFile() models.RawFile {
	return models.RawFile{
		FileName:    "transactions-raw-import-boa_chk_7259-2025.01.01-2025.01.31.csv",
		Bank:        "boa",
		AccountType: "chk",
		Last4:       "7259",
	}
}

func TestCSVParserParse(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Running Bal.",
		"2025-01-05,NETFLIX.COM,-15.49,984.51",
		`2025-01-06,PAYCHECK ACME,"2,500.00","3,484.51"`,
	}, "\n")

	result, err := NewCSVParser().Parse(strings.NewReader(input), testRawFile())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Zero(t, result.RowsSkipped)

	first := result.Transactions[0]
	assert.Equal(t, "NETFLIX.COM", first.Description)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-15.49")))
	assert.True(t, first.RunningBalance.Valid)
	assert.True(t, first.RunningBalance.Decimal.Equal(decimal.RequireFromString("984.51")))
	assert.Equal(t, "boa", first.Bank)
	assert.Equal(t, "7259", first.AccountLast4)
	assert.Equal(t, 1, first.SourceRow)

	second := result.Transactions[1]
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("2500.00")))
	assert.Equal(t, 2, second.SourceRow)
}

func TestCSVParserSkipsPreambleRows(t *testing.T) {
	// Bank exports often carry summary lines before the real header.
	input := strings.Join([]string{
		"Account summary for boa ...7259",
		"Beginning balance,$1000.00",
		"",
		"Date,Description,Amount,Running Bal.",
		"01/05/2025,COFFEE SHOP,-4.50,995.50",
	}, "\n")

	result, err := NewCSVParser().Parse(strings.NewReader(input), testRawFile())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "COFFEE SHOP", result.Transactions[0].Description)
}

func TestCSVParserMissingColumnsIsSchemaError(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Running Bal.",
		"2025-01-05,NETFLIX.COM,984.51",
	}, "\n")

	_, err := NewCSVParser().Parse(strings.NewReader(input), testRawFile())
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"Amount"}, se.MissingColumns)
}

func TestCSVParserSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount",
		"2025-01-05,GOOD ROW,-10.00",
		"not-a-date,BAD DATE,-1.00",
		"2025-01-07,BAD AMOUNT,abc",
		"2025-01-08,ANOTHER GOOD ROW,-2.00",
	}, "\n")

	result, err := NewCSVParser().Parse(strings.NewReader(input), testRawFile())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, 2, result.RowsSkipped)
	require.Len(t, result.RowIssues, 2)
	assert.Equal(t, 2, result.RowIssues[0].Row)
	assert.Equal(t, 3, result.RowIssues[1].Row)
	// Remaining rows keep their original source row numbers.
	assert.Equal(t, 4, result.Transactions[1].SourceRow)
}

func TestCSVParserMissingBalanceLeavesNull(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount,Running Bal.",
		"2025-01-05,NO BALANCE,-10.00,",
	}, "\n")

	result, err := NewCSVParser().Parse(strings.NewReader(input), testRawFile())
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.False(t, result.Transactions[0].RunningBalance.Valid)
}

func TestCSVParserEmptyFileIsSchemaError(t *testing.T) {
	_, err := NewCSVParser().Parse(strings.NewReader(""), testRawFile())
	var se *SchemaError
	require.True(t, errors.As(err, &se))
}
