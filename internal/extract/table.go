package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// summarizeTable renders tabular data as a prose-friendly summary:
// shape, column names, a handful of sample rows, and basic statistics
// for columns that parse as numbers throughout.
func summarizeTable(rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("table is empty")
	}

	header := rows[0]
	body := rows[1:]

	var text strings.Builder
	text.WriteString("Data Summary:\n")
	text.WriteString(fmt.Sprintf("Shape: %d rows, %d columns\n", len(body), len(header)))
	text.WriteString(fmt.Sprintf("Columns: %s\n\n", strings.Join(header, ", ")))

	text.WriteString("Sample Data:\n")
	text.WriteString(strings.Join(header, " | "))
	text.WriteString("\n")
	for i, row := range body {
		if i >= sampleRows {
			break
		}
		text.WriteString(strings.Join(row, " | "))
		text.WriteString("\n")
	}

	stats := numericStats(header, body)
	if len(stats) > 0 {
		text.WriteString("\nNumeric Statistics:\n")
		for _, s := range stats {
			text.WriteString(s)
			text.WriteString("\n")
		}
	}

	return strings.TrimSpace(text.String()), nil
}

// numericStats computes count/mean/min/max per column whose non-empty
// cells all parse as numbers.
func numericStats(header []string, body [][]string) []string {
	var stats []string
	for col, name := range header {
		var values []float64
		numeric := true
		for _, row := range body {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				numeric = false
				break
			}
			values = append(values, v)
		}
		if !numeric || len(values) == 0 {
			continue
		}

		minV, maxV, sum := values[0], values[0], 0.0
		for _, v := range values {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
			sum += v
		}
		mean := sum / float64(len(values))
		stats = append(stats, fmt.Sprintf("%s: count=%d mean=%.2f min=%.2f max=%.2f",
			name, len(values), mean, minV, maxV))
	}
	return stats
}
