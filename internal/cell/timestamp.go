package cell

import (
	"fmt"
	"strconv"
	"strings"
)

// TimestampParts is the decomposed (y, m, d, H, M, S, nanos) form of a
// date/time cell. No C-buffer writer consumes it: fetch.GetData has no
// TYPE_TIMESTAMP/TYPE_DATE/TYPE_TIME conversion and serves those targets
// the value's text instead.
type TimestampParts struct {
	Year                     int64
	Month, Day               int
	Hour, Minute, Second     int
	Nanos                    int64
	OffsetMinutes            int16
	HasOffset                bool
}

// ToTimestampParts decomposes a cell into timestamp parts: DateTime and
// DateTimeOffset cells decompose their microsecond value directly, Date
// and Time cells their day count and nanoseconds; anything else is
// rendered to text and parsed as
// "YYYY-MM-DD[ T]HH:MM:SS[.fff][±HH:MM]" (spec §4.6).
func ToTimestampParts(v CellValue) (TimestampParts, error) {
	switch v.Kind {
	case KindDateTime:
		y, mo, d, h, mi, se, ns := decompose(v.DateTimeMicros)
		return TimestampParts{Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Second: se, Nanos: ns}, nil
	case KindDateTimeOffset:
		y, mo, d, h, mi, se, ns := decompose(v.DateTimeMicros)
		return TimestampParts{Year: y, Month: mo, Day: d, Hour: h, Minute: mi, Second: se, Nanos: ns,
			OffsetMinutes: v.OffsetMinutes, HasOffset: true}, nil
	case KindDate:
		y, mo, d := civilFromDays(int64(v.DateDays))
		return TimestampParts{Year: y, Month: mo, Day: d}, nil
	case KindTime:
		const nsPerSec = int64(1e9)
		total := v.TimeNanos / nsPerSec
		return TimestampParts{Hour: int(total / 3600), Minute: int((total % 3600) / 60),
			Second: int(total % 60), Nanos: v.TimeNanos % nsPerSec}, nil
	default:
		return parseTimestampText(ToText(v))
	}
}

// parseTimestampText parses "YYYY-MM-DD[ T]HH:MM:SS[.fff][±HH:MM]",
// tolerating a date-only or time-only input.
func parseTimestampText(s string) (TimestampParts, error) {
	s = strings.TrimSpace(s)
	var p TimestampParts

	datePart, rest, hasTime := splitDateTime(s)

	if datePart != "" {
		segs := strings.Split(datePart, "-")
		if len(segs) == 3 {
			y, err1 := strconv.ParseInt(segs[0], 10, 64)
			mo, err2 := strconv.Atoi(segs[1])
			d, err3 := strconv.Atoi(segs[2])
			if err1 != nil || err2 != nil || err3 != nil {
				return p, fmt.Errorf("cell: invalid date %q", datePart)
			}
			p.Year, p.Month, p.Day = y, mo, d
		} else if datePart != "" {
			return p, fmt.Errorf("cell: invalid date %q", datePart)
		}
	}

	if hasTime {
		timePart := rest
		offsetSign := 0
		offsetIdx := -1
		for i := len(timePart) - 1; i >= 0; i-- {
			if timePart[i] == '+' {
				offsetSign = 1
				offsetIdx = i
				break
			}
			if timePart[i] == '-' {
				offsetSign = -1
				offsetIdx = i
				break
			}
		}
		if offsetIdx > 0 {
			offStr := timePart[offsetIdx+1:]
			timePart = timePart[:offsetIdx]
			oh, om := 0, 0
			if segs := strings.Split(offStr, ":"); len(segs) == 2 {
				oh, _ = strconv.Atoi(segs[0])
				om, _ = strconv.Atoi(segs[1])
			}
			p.OffsetMinutes = int16(offsetSign * (oh*60 + om))
			p.HasOffset = true
		}

		var secFrac string
		hms := timePart
		if dot := strings.IndexByte(timePart, '.'); dot >= 0 {
			hms = timePart[:dot]
			secFrac = timePart[dot+1:]
		}
		segs := strings.Split(hms, ":")
		if len(segs) >= 2 {
			p.Hour, _ = strconv.Atoi(segs[0])
			p.Minute, _ = strconv.Atoi(segs[1])
			if len(segs) >= 3 {
				p.Second, _ = strconv.Atoi(segs[2])
			}
		}
		if secFrac != "" {
			for len(secFrac) < 9 {
				secFrac += "0"
			}
			ns, _ := strconv.ParseInt(secFrac[:9], 10, 64)
			p.Nanos = ns
		}
	}

	return p, nil
}

func splitDateTime(s string) (datePart, rest string, hasTime bool) {
	if idx := strings.IndexByte(s, 'T'); idx >= 0 {
		return s[:idx], s[idx+1:], true
	}
	if idx := strings.IndexByte(s, ' '); idx >= 0 && strings.Count(s[:idx], "-") == 2 {
		return s[:idx], s[idx+1:], true
	}
	if strings.Contains(s, "-") && strings.Count(s, "-") >= 2 && !strings.Contains(s, ":") {
		return s, "", false
	}
	if strings.Contains(s, ":") && !strings.Contains(s, "-") {
		return "", s, true
	}
	return s, "", false
}
