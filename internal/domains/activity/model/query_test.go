package model

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		q, violations := ParseReportQuery(url.Values{})
		assert.Empty(t, violations)
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, DefaultPageSize, q.Size)
		assert.Nil(t, q.From)
	})

	t.Run("clamps paging", func(t *testing.T) {
		q, violations := ParseReportQuery(url.Values{"page": {"0"}, "size": {"1000"}})
		assert.Empty(t, violations)
		assert.Equal(t, 1, q.Page)
		assert.Equal(t, MaxPageSize, q.Size)
	})

	t.Run("filters", func(t *testing.T) {
		q, violations := ParseReportQuery(url.Values{
			"type": {"purchase"}, "customer": {" ana "}, "from": {"2024-03-01"}, "to": {"2024-03-31"},
		})
		require.Empty(t, violations)
		assert.Equal(t, TypePurchase, q.Type)
		assert.Equal(t, "ana", q.Customer)
		require.NotNil(t, q.From)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *q.From)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, violations := ParseReportQuery(url.Values{"type": {"SOLD"}, "from": {"03/01/2024"}})
		require.Len(t, violations, 2)
		assert.Equal(t, "from", violations[0].Field)
		assert.Equal(t, "type", violations[1].Field)
	})

	t.Run("from after to", func(t *testing.T) {
		_, violations := ParseReportQuery(url.Values{"from": {"2024-04-01"}, "to": {"2024-03-01"}})
		require.Len(t, violations, 1)
		assert.Equal(t, "from", violations[0].Field)
	})
}

func TestReportQuery_MatchesWholeDays(t *testing.T) {
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	q := ReportQuery{From: &day, To: &day}

	assert.True(t, q.Matches(Entry{Timestamp: time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)}))
	assert.False(t, q.Matches(Entry{Timestamp: time.Date(2024, 3, 6, 0, 0, 1, 0, time.UTC)}))
	assert.False(t, q.Matches(Entry{Timestamp: time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)}))
}
