// Package upload parses user-supplied spreadsheets into price series
// and keeps them available for the dashboard's analytics view.
package upload

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/prismfin/prism/internal/core"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Parse reads a CSV or TSV export of daily prices into price points.
// The first row must be a header naming at least a close column; date,
// open, high, low and volume columns are matched by name when present.
// Rows that fail to parse are skipped, matching the engine's policy of
// degrading on bad data instead of failing the whole file.
func Parse(data []byte) ([]core.PricePoint, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, core.WrapError(core.ErrUploadInvalid, fmt.Errorf("reading header: %w", err))
	}

	cols := mapColumns(header)
	closeIdx, ok := cols["close"]
	if !ok {
		return nil, core.WrapError(core.ErrUploadInvalid, fmt.Errorf("no close column in header: %v", header))
	}

	var points []core.PricePoint
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}

		closeVal, err := field(record, closeIdx)
		if err != nil {
			continue
		}

		p := core.PricePoint{Close: closeVal}
		if idx, ok := cols["open"]; ok {
			p.Open, _ = field(record, idx)
		}
		if idx, ok := cols["high"]; ok {
			p.High, _ = field(record, idx)
		}
		if idx, ok := cols["low"]; ok {
			p.Low, _ = field(record, idx)
		}
		if idx, ok := cols["volume"]; ok {
			p.Volume, _ = field(record, idx)
		}
		if idx, ok := cols["date"]; ok && idx < len(record) {
			p.Date = parseDate(record[idx])
		}

		// Files with only a close column have no OHLC envelope to check
		if _, hasOHLC := cols["open"]; hasOHLC {
			if !p.IsValid() {
				continue
			}
		}

		points = append(points, p)
	}

	if len(points) == 0 {
		return nil, core.WrapError(core.ErrUploadInvalid, fmt.Errorf("no usable price rows"))
	}
	return points, nil
}

// detectDelimiter picks tab when the first line contains one, else comma.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.ContainsRune(line, '\t') {
		return '\t'
	}
	if !bytes.ContainsRune(line, ',') && bytes.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// mapColumns maps normalized header names to their indexes.
func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		switch name {
		case "date", "time", "day":
			cols["date"] = i
		case "open":
			cols["open"] = i
		case "high":
			cols["high"] = i
		case "low":
			cols["low"] = i
		case "close", "adj close", "adj_close", "price":
			// prefer a plain close column over adjusted
			if _, exists := cols["close"]; !exists || name == "close" {
				cols["close"] = i
			}
		case "volume", "vol":
			cols["volume"] = i
		}
	}
	return cols
}

func field(record []string, idx int) (float64, error) {
	if idx >= len(record) {
		return 0, fmt.Errorf("missing field %d", idx)
	}
	s := strings.TrimSpace(strings.ReplaceAll(record[idx], ",", ""))
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}
	return strconv.ParseFloat(s, 64)
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
