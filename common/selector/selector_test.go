package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkivo/depositor/common/models"
)

func rec(format string, size int64, created bool) *models.InventoryRecord {
	pkg := "pkg-1"
	return &models.InventoryRecord{
		File:     "data.csv",
		FormatID: format,
		Size:     size,
		Package:  &pkg,
		Created:  created,
		Ready:    true,
	}
}

func TestEmptySelectorMatchesEverything(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)

	ok, err := s.Matches(rec("text/csv", 10, false))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSelectorExpression(t *testing.T) {
	s, err := New(`rec.format_id == "text/csv" && rec.size < 1000`)
	require.NoError(t, err)

	ok, err := s.Matches(rec("text/csv", 10, false))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Matches(rec("image/png", 10, false))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Matches(rec("text/csv", 5000, false))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectorSeesStatusFlags(t *testing.T) {
	s, err := New(`!rec.created && rec.package_id == "pkg-1"`)
	require.NoError(t, err)

	ok, err := s.Matches(rec("text/csv", 10, false))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Matches(rec("text/csv", 10, true))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectorCompileErrors(t *testing.T) {
	_, err := New(`rec.size ==`)
	assert.Error(t, err)
}

func TestSelectorNonBooleanResult(t *testing.T) {
	s, err := New(`rec.size + 1`)
	require.NoError(t, err)

	_, err = s.Matches(rec("text/csv", 10, false))
	assert.Error(t, err)
}
