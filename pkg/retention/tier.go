package retention

import "time"

//go:generate go run github.com/dmarkham/enumer -type Tier -trimprefix Tier -transform lower -json -text -yaml -output tier.gen.go

// Tier is the GFS class of a backup artifact. Higher tiers rank above lower
// ones: a monthly artifact also counts toward the weekly and daily windows.
type Tier int

const (
	TierDaily Tier = iota
	TierWeekly
	TierMonthly
)

// Calendar anchors of the weekly and monthly tiers.
const (
	WeeklyAnchor     = time.Monday
	MonthlyAnchorDay = 1
)

// Classify returns the tier of an artifact taken at t, using the calendar
// date in t's location.
func Classify(t time.Time) Tier {
	switch {
	case t.Day() == MonthlyAnchorDay:
		return TierMonthly
	case t.Weekday() == WeeklyAnchor:
		return TierWeekly
	default:
		return TierDaily
	}
}

// Includes reports whether an artifact of tier other is eligible for t's
// window.
func (t Tier) Includes(other Tier) bool {
	return other >= t
}
