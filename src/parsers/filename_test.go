package parsers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFilename(t *testing.T) {
	raw, err := DecodeFilename("transactions-raw-import-boa_chk_7259-2025.01.01-2025.03.31.csv")
	require.NoError(t, err)
	assert.Equal(t, "boa", raw.Bank)
	assert.Equal(t, "chk", raw.AccountType)
	assert.Equal(t, "7259", raw.Last4)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), raw.PeriodStart)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), raw.PeriodEnd)
	assert.Equal(t, "transactions-raw-import-boa_chk_7259-2025.01.01-2025.03.31.csv", raw.FileName)
	assert.Empty(t, raw.Path)
}

func TestDecodeFilenameSingularPrefix(t *testing.T) {
	raw, err := DecodeFilename("transaction-raw-import-chase_cc_1234-2024.06.01-2024.06.30.csv")
	require.NoError(t, err)
	assert.Equal(t, "chase", raw.Bank)
	assert.Equal(t, "cc", raw.AccountType)
}

func TestDecodeFilenameErrors(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		wantSegment string
	}{
		{"wrong extension", "transactions-raw-import-boa_chk_7259-2025.01.01-2025.03.31.txt", "extension"},
		{"missing prefix", "export-boa_chk_7259-2025.01.01-2025.03.31.csv", "prefix"},
		{"too few dash segments", "transactions-raw-import-boa_chk_7259-2025.01.01.csv", "account segment"},
		{"account segment not three tokens", "transactions-raw-import-boachk7259-2025.01.01-2025.03.31.csv", "account segment"},
		{"uppercase bank token", "transactions-raw-import-BOA_chk_7259-2025.01.01-2025.03.31.csv", "bank"},
		{"unknown account type", "transactions-raw-import-boa_sav_7259-2025.01.01-2025.03.31.csv", "account type"},
		{"last4 not four digits", "transactions-raw-import-boa_chk_725-2025.01.01-2025.03.31.csv", "last4"},
		{"bad start date", "transactions-raw-import-boa_chk_7259-2025.13.01-2025.03.31.csv", "start date"},
		{"bad end date", "transactions-raw-import-boa_chk_7259-2025.01.01-2025.03.99.csv", "end date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFilename(tt.fileName)
			require.Error(t, err)
			var mfe *MalformedFilenameError
			require.True(t, errors.As(err, &mfe), "expected MalformedFilenameError, got %T", err)
			assert.Equal(t, tt.wantSegment, mfe.Segment)
			assert.Equal(t, tt.fileName, mfe.FileName)
		})
	}
}

func TestEncodeFilenameRoundTrip(t *testing.T) {
	original := "transactions-raw-import-boa_cc_0042-2024.11.01-2024.11.30.csv"
	raw, err := DecodeFilename(original)
	require.NoError(t, err)
	assert.Equal(t, original, EncodeFilename(raw))
}
