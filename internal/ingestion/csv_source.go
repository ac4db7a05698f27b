package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"equity-noise-lab/internal/domain"
)

// CSVShortInterestSource reads the short-interest reference series from a
// vendor CSV export. The export uses one header row; column order varies
// between vendor versions, so all lookups go through the header.
//
// Recognized columns:
//
//	Business Date / Date   trade day, "YYYY-MM-DD" or "M/D/YYYY" or "M/D/YY"
//	Ticker                 equity symbol
//	S3SIPctFloat           short interest as fraction of float (preferred)
//	ShortInterestPct       same, older exports
//	Short Interest         raw shares short (fallback, divided by S3Float)
//	S3Float                float shares (fallback denominator)
//	Crowded Score          vendor crowding score
//	Squeeze Score          vendor squeeze score
//	S3Utilization          lendable utilization percent
//	Last Rate              last borrow rate percent
type CSVShortInterestSource struct {
	path string
}

// NewCSVShortInterestSource creates a source over the given CSV file.
func NewCSVShortInterestSource(path string) *CSVShortInterestSource {
	return &CSVShortInterestSource{path: path}
}

// Fetch returns all rows for a ticker. Rows with an unparseable day are
// skipped. Returns an empty slice (not an error) when the file is absent.
func (s *CSVShortInterestSource) Fetch(ctx context.Context, ticker string) ([]*domain.ShortInterestRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open csv %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // vendor exports occasionally carry ragged rows

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w", s.path, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	var rows []*domain.ShortInterestRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv %s: %w", s.path, err)
		}

		if field(record, col, "Ticker") != ticker {
			continue
		}

		rawDay := field(record, col, "Business Date")
		if rawDay == "" {
			rawDay = field(record, col, "Date")
		}
		day, ok := normalizeDay(rawDay)
		if !ok {
			continue
		}

		rows = append(rows, &domain.ShortInterestRow{
			Ticker:           ticker,
			Day:              day,
			ShortInterestPct: shortInterestPct(record, col),
			CrowdedScore:     floatField(record, col, "Crowded Score"),
			SqueezeScore:     floatField(record, col, "Squeeze Score"),
			Utilization:      floatField(record, col, "S3Utilization"),
			BorrowCost:       floatField(record, col, "Last Rate"),
		})
	}

	return rows, nil
}

// shortInterestPct derives SI% from whichever columns the export carries.
// Fractional columns are scaled to percent; the raw-shares fallback divides
// by float size.
func shortInterestPct(record []string, col map[string]int) float64 {
	pct := floatField(record, col, "S3SIPctFloat")
	if pct == 0 {
		pct = floatField(record, col, "ShortInterestPct")
	}
	pct *= 100
	if pct != 0 {
		return pct
	}

	siRaw := floatField(record, col, "Short Interest")
	siFloat := floatField(record, col, "S3Float")
	if siRaw > 0 && siFloat > 0 {
		return siRaw / siFloat * 100
	}
	return 0
}

// normalizeDay converts vendor day formats to "YYYY-MM-DD".
// Handles "M/D/YYYY", "M/D/YY" (assumed 20xx), and pass-through ISO days.
func normalizeDay(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if strings.Contains(raw, "/") {
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return "", false
		}
		month, day, year := parts[0], parts[1], parts[2]
		if len(year) == 2 {
			year = "20" + year
		}
		if len(year) != 4 {
			return "", false
		}
		if len(month) == 1 {
			month = "0" + month
		}
		if len(day) == 1 {
			day = "0" + day
		}
		return year + "-" + month + "-" + day, true
	}

	if day, ok := domain.DayKeyUTC(raw); ok {
		return day, true
	}
	return "", false
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func floatField(record []string, col map[string]int, name string) float64 {
	v, err := strconv.ParseFloat(field(record, col, name), 64)
	if err != nil {
		return 0
	}
	return v
}
