package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/events"
)

func TestWriteDashboardCSVSections(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	catID := int64(3)
	dash := Dashboard{
		From:            day,
		To:              day.AddDate(0, 0, 7),
		TotalCount:      4,
		TotalCostImpact: 51.3,
		ByDay: []DayBucket{
			{Day: day, Count: 2, Quantity: 3.5, CostImpact: 12.6},
			{Day: day.AddDate(0, 0, 1), Count: 2, Quantity: 1, CostImpact: 38.7},
		},
		ByCategory: []CategoryBucket{
			{CategoryID: &catID, CategoryName: "Dairy", Count: 3, CostImpact: 42.1},
			{CategoryName: "Uncategorised", Count: 1, CostImpact: 9.2},
		},
		ByStatus: []StatusBucket{
			{Status: events.StatusApproved, Count: 3, CostImpact: 42.1},
			{Status: events.StatusDraft, Count: 1, CostImpact: 9.2},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardCSV(&buf, dash))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	require.Equal(t, []string{"From", "2026-03-02"}, records[0])
	require.Equal(t, []string{"Total Events", "4"}, records[2])
	require.Equal(t, []string{"Total Cost Impact", "51.30"}, records[3])
	require.Equal(t, []string{"Day", "Count", "Quantity", "Cost Impact"}, records[4])
	require.Equal(t, []string{"2026-03-02", "2", "3.50", "12.60"}, records[5])
	require.Equal(t, []string{"Category", "Count", "Cost Impact"}, records[7])
	require.Equal(t, []string{"Dairy", "3", "42.10"}, records[8])
	require.Equal(t, []string{"Status", "Count", "Cost Impact"}, records[10])
	require.Equal(t, []string{string(events.StatusApproved), "3", "42.10"}, records[11])
}

func TestWriteDashboardCSVEmptyWindow(t *testing.T) {
	dash := Dashboard{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)}

	var buf bytes.Buffer
	require.NoError(t, WriteDashboardCSV(&buf, dash))

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	// Summary rows plus the three section headers, no data rows.
	require.Len(t, records, 7)
}
