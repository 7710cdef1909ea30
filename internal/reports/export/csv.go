package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/lossdesk/lossdesk/internal/events"
)

// WriteEventsCSV serialises exported loss events to CSV.
func WriteEventsCSV(w io.Writer, items []events.LossEvent) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Occurred At", "Type", "Quantity", "Unit", "Cost Price", "Sale Price", "Cost Impact", "Reason", "Status"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, ev := range items {
		record := []string{
			ev.ID.String(),
			ev.OccurredAt.Format(time.RFC3339),
			string(ev.Type),
			formatFloat(ev.Quantity),
			ev.Unit,
			formatFloat(ev.CostPrice),
			formatFloat(ev.SalePrice),
			formatFloat(ev.CostImpact()),
			ev.Reason,
			string(ev.Status),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
