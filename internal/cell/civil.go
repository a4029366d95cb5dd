package cell

// Civil date conversions using Howard Hinnant's era/doe decomposition
// (http://howardhinnant.github.io/date_algorithms.html), as named in
// spec §4.8. Days are counted from the Unix epoch (1970-01-01 = day 0).

const (
	civilEraOffsetDays = 719468 // days from 0000-03-01 to 1970-01-01
	civilDaysPerEra     = 146097
	civilDaysPerEraMinus = 146096
)

// civilFromDays converts a day count since the Unix epoch into a
// proleptic-Gregorian (year, month, day) triple.
func civilFromDays(z int64) (year int64, month, day int) {
	z += civilEraOffsetDays
	var era int64
	if z >= 0 {
		era = z / civilDaysPerEra
	} else {
		era = (z - civilDaysPerEraMinus) / civilDaysPerEra
	}
	doe := z - era*civilDaysPerEra // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/civilDaysPerEraMinus) / 365 // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d := doy - (153*mp+2)/5 + 1              // [1, 31]
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, int(m), int(d)
}

// daysFromCivil converts a (year, month, day) triple into a day count
// since the Unix epoch. Inverse of civilFromDays.
func daysFromCivil(year int64, month, day int) int64 {
	y := year
	if month <= 2 {
		y--
	}
	var era int64
	if y >= 0 {
		era = y / 400
	} else {
		era = (y - 399) / 400
	}
	yoe := y - era*400 // [0, 399]
	var mp int64
	if month > 2 {
		mp = int64(month) - 3
	} else {
		mp = int64(month) + 9
	}
	doy := (153*mp+2)/5 + int64(day) - 1                 // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy                // [0, 146096]
	return era*civilDaysPerEra + doe - civilEraOffsetDays
}
