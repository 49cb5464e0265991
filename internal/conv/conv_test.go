package conv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnLabel(t *testing.T) {
	assert.Equal(t, "A", ColumnLabel(0))
	assert.Equal(t, "C", ColumnLabel(2))
	assert.Equal(t, "Z", ColumnLabel(25))
	assert.Equal(t, "", ColumnLabel(-1))
	assert.Equal(t, "", ColumnLabel(26))
}

func TestColumnIndex(t *testing.T) {
	for col := 0; col < 26; col++ {
		got, err := ColumnIndex(ColumnLabel(col))
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
}

func TestColumnIndex_Rejects(t *testing.T) {
	for _, label := range []string{"", "a", "AA", "1", " "} {
		_, err := ColumnIndex(label)
		assert.ErrorIs(t, err, ErrBadColumn, "label %q", label)
	}
}

func TestDateRoundTrip(t *testing.T) {
	day := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseDate(FormatDate(day))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(day))
	assert.Equal(t, "09/03/2025", FormatDate(day))
}

func TestDateTimeRoundTrip(t *testing.T) {
	ts := time.Date(2025, time.March, 9, 14, 30, 0, 0, time.UTC)
	parsed, err := ParseDateTime(FormatDateTime(ts))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ts))
	assert.Equal(t, "14:30 09/03/2025", FormatDateTime(ts))
}

func TestParseDate_Rejects(t *testing.T) {
	for _, raw := range []string{"2025-03-09", "junk", ""} {
		_, err := ParseDate(raw)
		assert.Error(t, err, "input %q", raw)
	}
}
