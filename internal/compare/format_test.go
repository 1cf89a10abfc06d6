package compare

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compareForFormat(t *testing.T) *Result {
	t.Helper()
	result, err := newTestEngine().Compare(context.Background(), usProject(80000, 2))
	require.NoError(t, err)
	return result
}

func TestTableFormatter(t *testing.T) {
	out := (&TableFormatter{}).Format(compareForFormat(t))

	assert.Contains(t, out, "TAX STRATEGY COMPARISON")
	assert.Contains(t, out, "* Individual Tax", "optimal strategy carries the marker")
	assert.Contains(t, out, "Business + Dividend")
	assert.Contains(t, out, "RECOMMENDATION")
	assert.Contains(t, out, "$70559.00")
}

func TestCSVFormatter(t *testing.T) {
	out, err := (&CSVFormatter{}).Format(compareForFormat(t))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5, "header plus one row per strategy")
	assert.Equal(t, "strategy", rows[0][0])

	optimalCol := len(rows[0]) - 1
	var optimalCount int
	for _, row := range rows[1:] {
		if row[optimalCol] == "yes" {
			optimalCount++
		}
	}
	assert.Equal(t, 1, optimalCount)
}

func TestJSONFormatter(t *testing.T) {
	out, err := (&JSONFormatter{}).Format(compareForFormat(t))
	require.NoError(t, err)

	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.AllStrategies, 4)
	require.NotNil(t, decoded.Optimal)
	assert.Equal(t, "Individual Tax", decoded.Optimal.StrategyName)
	assert.True(t, decoded.Savings.Equal(compareForFormat(t).Savings))

	pretty, err := (&JSONFormatter{Pretty: true}).Format(compareForFormat(t))
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  ")
}
