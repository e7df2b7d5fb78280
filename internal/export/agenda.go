package export

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fact-registration/internal/domain"
)

// AgendaColumns the headers an agenda upload must carry (any case, any order).
var AgendaColumns = []string{
	"title",
	"date",
	"start_time",
	"end_time",
	"building",
	"room_num",
	"session_num",
	"address",
}

// ErrAgendaFile wraps every reason an agenda upload is rejected.
var ErrAgendaFile = errors.New("invalid agenda file")

func agendaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAgendaFile, fmt.Sprintf(format, args...))
}

var (
	dateLayouts = []string{"2006-01-02", "1/2/2006", "01/02/2006", "2006/01/02", "Jan 2, 2006", "January 2, 2006"}
	timeLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3PM", "3 PM"}
)

// ParseAgenda reads the first sheet of an agenda workbook. Dates and times
// combine in loc. Exact duplicate rows are dropped. A session_num outside 1..3
// is ignored, not rejected.
func ParseAgenda(data []byte, loc *time.Location) ([]*domain.AgendaItem, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, agendaErr("error reading file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, agendaErr("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, agendaErr("error reading file")
	}
	if len(rows) == 0 {
		return nil, agendaErr("missing header row")
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			return nil, agendaErr("duplicate column names")
		}
		index[name] = i
	}
	for _, c := range AgendaColumns {
		if _, ok := index[c]; !ok {
			return nil, agendaErr("missing column '%s'", c)
		}
	}

	seen := map[string]bool{}
	var items []*domain.AgendaItem
	for r, row := range rows[1:] {
		line := r + 2
		cell := func(name string) string {
			i := index[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if isBlankRow(row) {
			continue
		}
		key := strings.Join(row, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true

		title, date, start, end := cell("title"), cell("date"), cell("start_time"), cell("end_time")
		if title == "" || date == "" || start == "" {
			return nil, agendaErr("title, date, and start time can not be empty (row %d)", line)
		}

		day, err := parseDate(date)
		if err != nil {
			return nil, agendaErr("row %d: bad date %q", line, date)
		}
		startOff, err := parseTimeOfDay(start)
		if err != nil {
			return nil, agendaErr("row %d: bad start_time %q", line, start)
		}
		endOff := startOff
		if end != "" {
			if endOff, err = parseTimeOfDay(end); err != nil {
				return nil, agendaErr("row %d: bad end_time %q", line, end)
			}
		}
		if startOff > endOff {
			return nil, agendaErr("start times can not be after end times (row %d)", line)
		}

		item := &domain.AgendaItem{
			Title:     title,
			Building:  cell("building"),
			RoomNum:   cell("room_num"),
			Address:   cell("address"),
			StartTime: wallClock(day, startOff, loc),
			EndTime:   wallClock(day, endOff, loc),
		}
		if n, err := strconv.ParseFloat(cell("session_num"), 64); err == nil && n == math.Trunc(n) && domain.ValidSession(int(n)) {
			item.SessionNum = sql.NullInt64{Int64: int64(n), Valid: true}
		}
		items = append(items, item)
	}
	return items, nil
}

// wallClock places a time-of-day offset on day as local wall time, so DST
// transition days keep the clock reading from the sheet.
func wallClock(day time.Time, off time.Duration, loc *time.Location) time.Time {
	h := int(off / time.Hour)
	m := int(off % time.Hour / time.Minute)
	s := int(off % time.Minute / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc)
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts an Excel serial date or one of dateLayouts.
func parseDate(s string) (time.Time, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(f, false)
	}
	// pandas-style "2024-06-10 00:00:00"
	if i := strings.IndexByte(s, ' '); i > 0 && strings.Contains(s[i:], ":") {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseTimeOfDay returns the offset from midnight. Excel stores times as a day
// fraction, possibly with a date part that is discarded.
func parseTimeOfDay(s string) (time.Duration, error) {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		frac := f - math.Floor(f)
		secs := math.Round(frac * 24 * 60 * 60)
		return time.Duration(secs) * time.Second, nil
	}
	if i := strings.IndexByte(s, ' '); i > 0 && strings.Contains(s[:i], "-") {
		s = s[i+1:]
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}
