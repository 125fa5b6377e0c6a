package datanorm

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxExcelSerial is 9999-12-31, the last date a workbook can hold.
const maxExcelSerial = 2958465

// dayFirstLayouts are tried before the general parser so that ambiguous
// numeric dates always resolve day-before-month.
var dayFirstLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"02-01-06",
	"02/01/06",
	"02-01-2006 15:04",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
}

// monthFirstLayouts catch numeric dates that are only valid month-first,
// such as 03/15/2024. They run after dayFirstLayouts, so an ambiguous date
// never reaches them.
var monthFirstLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01.02.2006",
	"1.2.2006",
}

// ExtractSnapshot returns the as-of date of t, taken from the first
// non-missing snapshot_date value. The second result is false when there is
// no such column or the value is not a recognisable date.
func ExtractSnapshot(t *Table) (time.Time, bool) {
	for _, v := range t.Field(FieldSnapshotDate) {
		if v.IsMissing() {
			continue
		}
		return ParseSnapshotValue(v)
	}
	return time.Time{}, false
}

// ParseSnapshotValue interprets one cell as a date: native dates are used
// as-is, numbers as spreadsheet serials, anything else as day-first text.
func ParseSnapshotValue(v Value) (time.Time, bool) {
	switch v.Kind {
	case KindDate:
		return truncateDay(v.Date), true
	case KindNumber:
		if t, ok := fromSerial(v.Num); ok {
			return t, true
		}
		return parseDayFirst(v.String())
	case KindText:
		if n, ok := ParseNumber(v.Text); ok {
			if t, ok := fromSerial(n); ok {
				return t, true
			}
		}
		return parseDayFirst(v.Text)
	}
	return time.Time{}, false
}

func fromSerial(n float64) (time.Time, bool) {
	days := int(n)
	if days < 1 || days > maxExcelSerial {
		return time.Time{}, false
	}
	return excelEpoch.AddDate(0, 0, days), true
}

func parseDayFirst(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layouts := range [][]string{dayFirstLayouts, monthFirstLayouts} {
		for _, layout := range layouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return truncateDay(t), true
			}
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return truncateDay(t), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
