package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lossdesk/lossdesk/internal/events"
)

func sampleEvents() []events.LossEvent {
	occurred := time.Date(2026, 8, 10, 14, 0, 0, 0, time.UTC)
	return []events.LossEvent{
		{
			ID:         uuid.New(),
			OccurredAt: occurred,
			Type:       events.TypeSpoilage,
			Quantity:   3,
			Unit:       "un",
			CostPrice:  4.20,
			SalePrice:  7.99,
			Reason:     "cold chain break",
			Status:     events.StatusExported,
		},
		{
			ID:         uuid.New(),
			OccurredAt: occurred.Add(24 * time.Hour),
			Type:       events.TypeTheft,
			Quantity:   1,
			Unit:       "un",
			CostPrice:  89.90,
			Reason:     "missing at count",
			Status:     events.StatusExported,
		},
	}
}

func TestWriteEventsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEventsCSV(&buf, sampleEvents()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Occurred At", records[0][1])
	require.Equal(t, "SPOILAGE", records[1][2])
	require.Equal(t, "12.60", records[1][7])
	require.Equal(t, "89.90", records[2][7])
}

func TestWriteEventsPDF(t *testing.T) {
	var buf bytes.Buffer
	opts := PDFOptions{
		StoreName: "Mercado Central",
		Footer:    "internal use only",
		From:      time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 8, 11, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, WriteEventsPDF(&buf, sampleEvents(), opts))
	require.True(t, strings.HasPrefix(buf.String(), "%PDF"))
	require.Greater(t, buf.Len(), 1000)
}

func TestWriteEventsPDFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEventsPDF(&buf, nil, PDFOptions{}))
	require.True(t, strings.HasPrefix(buf.String(), "%PDF"))
}
