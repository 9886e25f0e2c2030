package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, InitSchema(db))
	return NewStore(db)
}

func TestUsageByCommand(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.LogUsage(1, 10, "port", 100))
	require.NoError(t, s.LogUsage(1, 10, "/port", 200))
	require.NoError(t, s.LogUsage(1, 11, "compare", 300))
	require.NoError(t, s.LogUsage(2, 12, "advanced", 400))
	require.NoError(t, s.LogUsage(2, 12, "backtest", 50))

	stats, err := s.UsageByCommand(100)
	require.NoError(t, err)

	require.Contains(t, stats, "portfolio")
	assert.Equal(t, 3, stats["portfolio"].Count)
	assert.Equal(t, 1, stats["portfolio"].Commands["compare"])
	assert.Equal(t, 1, stats["structure"].Count)
	assert.NotContains(t, stats, "backtest")
}

func TestUsageTimeSeries(t *testing.T) {
	s := newTestStore(t)
	day := int64(86400)
	require.NoError(t, s.LogUsage(1, 1, "port", 10))
	require.NoError(t, s.LogUsage(1, 1, "port", 20))
	require.NoError(t, s.LogUsage(1, 1, "port", day+5))
	require.NoError(t, s.LogUsage(1, 1, "advanced", day+6))

	series, err := s.UsageTimeSeries(0, day)
	require.NoError(t, err)
	assert.Equal(t, []TimeSeriesPoint{{0, 2}, {day, 1}}, series["portfolio"])
	assert.Equal(t, []TimeSeriesPoint{{day, 1}}, series["structure"])
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "portfolio", Category("/PORT"))
	assert.Equal(t, "commentary", Category("explain"))
	assert.Equal(t, "other", Category("help"))
}
