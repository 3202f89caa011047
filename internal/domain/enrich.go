package domain

// Enrich fills the derived columns of a record from its raw columns.
// It reads nothing but r, so it can run over records in any order.
func Enrich(r AccidentRecord) AccidentRecord {
	r.Severity = ClassifySeverity(r.Fatalities30d, r.InjuriesSerious, r.InjuriesLight)
	r.TotalCasualties = r.InjuriesLight + r.InjuriesSerious + r.Fatalities30d
	r.TimePeriod = ClassifyTimePeriod(r.Hour)
	r.Month = int(r.Date.Month())
	r.MonthName = r.Date.Month().String()
	return r
}

// ClassifySeverity returns the highest tier with a non-zero count. Fatalities
// take priority over serious injuries, which take priority over light ones.
func ClassifySeverity(fatalities30d, injuriesSerious, injuriesLight int) Severity {
	switch {
	case fatalities30d > 0:
		return SeverityFatal
	case injuriesSerious > 0:
		return SeveritySerious
	case injuriesLight > 0:
		return SeverityLight
	default:
		return SeverityPropertyDamageOnly
	}
}

// ClassifyTimePeriod buckets an hour of day. Ranges are half-open:
// [6,12) morning, [12,18) afternoon, [18,22) evening, everything else night.
func ClassifyTimePeriod(hour int) TimePeriod {
	switch {
	case 6 <= hour && hour < 12:
		return TimePeriodMorning
	case 12 <= hour && hour < 18:
		return TimePeriodAfternoon
	case 18 <= hour && hour < 22:
		return TimePeriodEvening
	default:
		return TimePeriodNight
	}
}
