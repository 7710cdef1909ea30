package reports

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteDashboardCSV serialises the aggregated dashboard to CSV, one section
// per grouping.
func WriteDashboardCSV(w io.Writer, dash Dashboard) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	summary := [][]string{
		{"From", dash.From.Format("2006-01-02")},
		{"To", dash.To.Format("2006-01-02")},
		{"Total Events", strconv.Itoa(dash.TotalCount)},
		{"Total Cost Impact", csvFloat(dash.TotalCostImpact)},
	}
	if err := writer.WriteAll(summary); err != nil {
		return err
	}

	if err := writer.Write([]string{"Day", "Count", "Quantity", "Cost Impact"}); err != nil {
		return err
	}
	for _, b := range dash.ByDay {
		record := []string{b.Day.Format("2006-01-02"), strconv.Itoa(b.Count), csvFloat(b.Quantity), csvFloat(b.CostImpact)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{"Category", "Count", "Cost Impact"}); err != nil {
		return err
	}
	for _, b := range dash.ByCategory {
		record := []string{b.CategoryName, strconv.Itoa(b.Count), csvFloat(b.CostImpact)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{"Status", "Count", "Cost Impact"}); err != nil {
		return err
	}
	for _, b := range dash.ByStatus {
		record := []string{string(b.Status), strconv.Itoa(b.Count), csvFloat(b.CostImpact)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
