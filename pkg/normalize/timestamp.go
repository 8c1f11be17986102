package normalize

import (
	"strconv"
	"time"
)

// Common timestamp layouts ordered by likelihood.
var commonLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00", // ISO 8601 with millis
	"2006-01-02T15:04:05Z07:00",     // ISO 8601
	"2006-01-02T15:04:05.000Z",      // ISO 8601 UTC with millis
	"2006-01-02T15:04:05Z",          // ISO 8601 UTC
	"2006-01-02T15:04:05",           // ISO 8601 local
	"2006-01-02 15:04:05.000",       // Space separator with millis
	"2006-01-02 15:04:05",           // Space separator
	"2006-01-02",                    // Date only
	"02/01/2006 15:04:05",           // DD/MM/YYYY
	"01/02/2006 15:04:05",           // MM/DD/YYYY
	"2006/01/02 15:04:05",           // YYYY/MM/DD
	"15:04:05",                      // Time only
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses a timestamp string into an absolute time with
// sub-second precision. ISO 8601 values take a byte-inspection fast path;
// purely numeric values are treated as Excel serial dates (days since
// 1899-12-30); everything else falls back to a layout table.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	b := []byte(s)

	// Fast path: ISO 8601 (most common).
	if len(b) >= 10 && b[4] == '-' && b[7] == '-' {
		if t, ok := parseISO8601Fast(b); ok {
			return t, true
		}
	}

	// Excel serial date (numeric).
	if isNumeric(b) {
		return parseExcelSerial(s)
	}

	for _, layout := range commonLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseISO8601Fast parses ISO 8601 format using direct byte arithmetic.
func parseISO8601Fast(b []byte) (time.Time, bool) {
	if len(b) < 10 {
		return time.Time{}, false
	}

	year := parseInt4(b[0:4])
	month := parseInt2(b[5:7])
	day := parseInt2(b[8:10])

	if year < 0 || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	var hour, minute, second, nsec int
	var loc *time.Location = time.UTC

	if len(b) > 10 && (b[10] == 'T' || b[10] == ' ') {
		if len(b) < 19 {
			return time.Time{}, false
		}
		hour = parseInt2(b[11:13])
		minute = parseInt2(b[14:16])
		second = parseInt2(b[17:19])
		if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 60 {
			return time.Time{}, false
		}

		if len(b) > 19 && b[19] == '.' {
			fracEnd := 20
			for fracEnd < len(b) && b[fracEnd] >= '0' && b[fracEnd] <= '9' {
				fracEnd++
			}
			nsec = parseFraction(b[20:fracEnd])
		}

		// Timezone suffix.
		for i := 19; i < len(b); i++ {
			if b[i] == 'Z' {
				loc = time.UTC
				break
			}
			if b[i] == '+' || b[i] == '-' {
				if i+5 <= len(b) {
					offsetHours := parseInt2(b[i+1 : i+3])
					offsetMins := 0
					if i+6 <= len(b) && b[i+3] == ':' {
						offsetMins = parseInt2(b[i+4 : i+6])
					} else if i+5 <= len(b) {
						offsetMins = parseInt2(b[i+3 : i+5])
					}
					offset := offsetHours*3600 + offsetMins*60
					if b[i] == '-' {
						offset = -offset
					}
					loc = time.FixedZone("", offset)
				}
				break
			}
		}
	} else if len(b) != 10 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, nsec, loc), true
}

// parseExcelSerial parses an Excel-style serial date (days since 1899-12-30,
// fractional part is the time of day).
func parseExcelSerial(s string) (time.Time, bool) {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || val <= 0 {
		return time.Time{}, false
	}

	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := int64(val)
	fraction := val - float64(days)

	t := epoch.AddDate(0, 0, int(days))
	if fraction > 0 {
		t = t.Add(time.Duration(fraction * 24 * float64(time.Hour)))
	}

	return t, true
}

// parseInt4 parses a 4-byte integer without allocation.
func parseInt4(b []byte) int {
	if len(b) != 4 {
		return -1
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return -1
		}
	}
	return int(b[0]-'0')*1000 + int(b[1]-'0')*100 + int(b[2]-'0')*10 + int(b[3]-'0')
}

// parseInt2 parses a 2-byte integer without allocation.
func parseInt2(b []byte) int {
	if len(b) != 2 || b[0] < '0' || b[0] > '9' || b[1] < '0' || b[1] > '9' {
		return -1
	}
	return int(b[0]-'0')*10 + int(b[1]-'0')
}

// parseFraction parses fractional seconds to nanoseconds.
func parseFraction(b []byte) int {
	if len(b) == 0 {
		return 0
	}

	var result int64
	multiplier := int64(100000000)

	for i := 0; i < len(b) && i < 9; i++ {
		result += int64(b[i]-'0') * multiplier
		multiplier /= 10
	}

	return int(result)
}

// isNumeric checks if a byte slice is a plain decimal number.
func isNumeric(b []byte) bool {
	if len(b) == 0 {
		return false
	}

	dotCount := 0
	for i, c := range b {
		if c >= '0' && c <= '9' {
			continue
		}
		if c == '.' && dotCount == 0 {
			dotCount++
			continue
		}
		if c == '-' && i == 0 {
			continue
		}
		return false
	}
	return true
}
