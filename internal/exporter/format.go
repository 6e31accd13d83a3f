package exporter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the textual form of every exported date
const DateLayout = "2006-01-02"

// formatFloat formats a float64 with the shortest exact representation
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatCell renders one table cell as text
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return val.Format(DateLayout)
	case float64:
		return formatFloat(val)
	case int:
		return formatInt(int64(val))
	case int64:
		return formatInt(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// fileSlug turns a sheet name into a file name stem: "AHT Forecast" → "aht_forecast"
func fileSlug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
