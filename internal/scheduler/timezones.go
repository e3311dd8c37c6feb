package scheduler

import "time"

// ZoneTable maps IANA zone names to fixed UTC offsets and UTC hours to the
// zones whose local dispatch window falls at that hour. Built once at startup
// and read-only afterwards. Offsets are static: DST transitions are not
// tracked, so DST-observing zones shift by an hour during DST periods.
type ZoneTable struct {
	offsets map[string]float64
	groups  map[int][]string
}

// NewZoneTable returns the built-in table.
func NewZoneTable() *ZoneTable {
	return &ZoneTable{
		offsets: map[string]float64{
			"Asia/Kolkata":        5.5,
			"Asia/Colombo":        5.5,
			"Asia/Kathmandu":      5.75,
			"Asia/Tashkent":       5,
			"Asia/Yekaterinburg":  5,
			"Asia/Dubai":          4,
			"Asia/Baku":           4,
			"Asia/Tbilisi":        4,
			"Europe/Moscow":       3,
			"Europe/Volgograd":    3,
			"Europe/Athens":       2,
			"Europe/Bucharest":    2,
			"Europe/Helsinki":     2,
			"Europe/Berlin":       1,
			"Europe/Paris":        1,
			"Europe/Rome":         1,
			"Europe/London":       0,
			"Europe/Dublin":       0,
			"America/Sao_Paulo":   -3,
			"America/Argentina/Buenos_Aires": -3,
			"America/New_York":    -5,
			"America/Toronto":     -5,
			"America/Chicago":     -6,
			"America/Mexico_City": -6,
			"America/Denver":      -7,
			"America/Edmonton":    -7,
			"America/Anchorage":   -9,
			"America/Los_Angeles": -8,
			"America/Vancouver":   -8,
			"Pacific/Honolulu":    -10,
			"Pacific/Auckland":    12,
			"Pacific/Fiji":        13,
			"Asia/Kamchatka":      12,
			"Pacific/Majuro":      12,
			"Asia/Vladivostok":    11,
			"Asia/Magadan":        11,
			"Asia/Sakhalin":       11,
			"Asia/Ust-Nera":       11,
			"Asia/Tokyo":          9,
			"Asia/Seoul":          9,
			"Asia/Pyongyang":      9,
			"Asia/Shanghai":       8,
			"Asia/Hong_Kong":      8,
			"Asia/Singapore":      8,
			"Asia/Bangkok":        7,
			"Asia/Ho_Chi_Minh":    7,
			"Asia/Jakarta":        7,
			"Asia/Almaty":         6,
			"Asia/Dhaka":          6,
			"Asia/Omsk":           6,
		},
		groups: map[int][]string{
			0:  {"Pacific/Auckland", "Pacific/Fiji"},
			1:  {"Asia/Kamchatka", "Pacific/Majuro"},
			2:  {"Asia/Vladivostok", "Asia/Magadan"},
			3:  {"Asia/Sakhalin", "Asia/Ust-Nera"},
			4:  {"Asia/Tokyo", "Asia/Seoul", "Asia/Pyongyang"},
			5:  {"Asia/Shanghai", "Asia/Hong_Kong", "Asia/Singapore"},
			6:  {"Asia/Bangkok", "Asia/Ho_Chi_Minh", "Asia/Jakarta"},
			7:  {"Asia/Almaty", "Asia/Dhaka", "Asia/Omsk"},
			8:  {"Asia/Tashkent", "Asia/Yekaterinburg"},
			9:  {"Asia/Dubai", "Asia/Baku", "Asia/Tbilisi"},
			10: {"Europe/Moscow", "Europe/Volgograd"},
			11: {"Europe/Athens", "Europe/Bucharest", "Europe/Helsinki"},
			12: {"Europe/Berlin", "Europe/Paris", "Europe/Rome"},
			13: {"Europe/London", "Europe/Dublin"},
			14: {"America/Sao_Paulo", "America/Argentina/Buenos_Aires"},
			15: {"America/New_York", "America/Toronto"},
			16: {"America/Chicago", "America/Mexico_City"},
			17: {"America/Denver", "America/Edmonton"},
			18: {"America/Anchorage", "Pacific/Honolulu"},
			19: {"Asia/Kolkata", "Asia/Colombo", "Asia/Kathmandu"},
			20: {"America/Los_Angeles", "America/Vancouver"},
			21: {"Pacific/Auckland", "Pacific/Fiji"},
			22: {"Asia/Kamchatka", "Pacific/Majuro"},
			23: {"Asia/Vladivostok", "Asia/Magadan"},
		},
	}
}

// DueZones returns the zones whose dispatch window falls at the given UTC hour.
func (t *ZoneTable) DueZones(utcHour int) []string {
	return t.groups[utcHour]
}

// Offset returns the fixed UTC offset in hours for zone, 0 when unknown.
func (t *ZoneTable) Offset(zone string) float64 {
	return t.offsets[zone]
}

// Known reports whether zone appears in the offset table.
func (t *ZoneTable) Known(zone string) bool {
	_, ok := t.offsets[zone]
	return ok
}

// LocalDayWindow returns the UTC instants bounding the zone's current local
// calendar day as seen at dispatch time. The +24h correction accounts for the
// scheduler running at a later UTC hour than the zone's local midnight.
func (t *ZoneTable) LocalDayWindow(now time.Time, zone string) (start, end time.Time) {
	now = now.UTC()
	utcMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := time.Duration(t.Offset(zone) * float64(time.Hour))
	start = utcMidnight.Add(-offset).Add(24 * time.Hour)
	return start, start.Add(24 * time.Hour)
}
