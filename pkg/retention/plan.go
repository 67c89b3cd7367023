package retention

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidPolicy is returned for retention counts that cannot be used.
var ErrInvalidPolicy = errors.New("invalid retention policy")

// Policy holds how many artifacts each tier keeps per (instance, database).
type Policy struct {
	DailyKeep   uint `yaml:"daily_keep" json:"daily_keep"`
	WeeklyKeep  uint `yaml:"weekly_keep" json:"weekly_keep"`
	MonthlyKeep uint `yaml:"monthly_keep" json:"monthly_keep"`
}

// PolicyFromCounts validates signed counts read from configuration.
func PolicyFromCounts(daily, weekly, monthly int) (Policy, error) {
	if daily < 0 || weekly < 0 || monthly < 0 {
		return Policy{}, fmt.Errorf("%w: counts must not be negative (daily=%d weekly=%d monthly=%d)",
			ErrInvalidPolicy, daily, weekly, monthly)
	}
	return Policy{DailyKeep: uint(daily), WeeklyKeep: uint(weekly), MonthlyKeep: uint(monthly)}, nil
}

// Keep returns the window size of tier.
func (p Policy) Keep(tier Tier) uint {
	switch tier {
	case TierDaily:
		return p.DailyKeep
	case TierWeekly:
		return p.WeeklyKeep
	case TierMonthly:
		return p.MonthlyKeep
	default:
		return 0
	}
}

// Artifact is one backup file of a database.
type Artifact struct {
	InstanceID   string    `json:"instance_id"`
	DatabaseName string    `json:"database_name"`
	Timestamp    time.Time `json:"timestamp"`
	Path         string    `json:"path"`
}

// Tier classifies the artifact by its timestamp.
func (a Artifact) Tier() Tier {
	return Classify(a.Timestamp)
}

type groupKey struct {
	instance string
	database string
}

// Plan is the outcome of PlanEviction. Keep and Delete are disjoint and
// sorted; Reasons maps each kept path to the tiers whose window retains it.
type Plan struct {
	Keep    []string            `json:"keep"`
	Delete  []string            `json:"delete"`
	Reasons map[string][]string `json:"reasons"`
	DryRun  bool                `json:"dry_run"`
}

// Keeps reports whether path survives the plan.
func (p Plan) Keeps(path string) bool {
	_, found := slices.BinarySearch(p.Keep, path)
	return found
}

// PlanEviction decides which artifacts survive policy. Groups are planned
// independently per (instance, database). Within a group each tier keeps its
// N most recent eligible artifacts, where an artifact is eligible for its
// own tier and every lower one; an artifact is deleted only when no window
// retains it. A path listed more than once counts once. The plan is the same
// whether or not dryRun is set; dryRun is recorded so Apply leaves the
// filesystem alone.
func PlanEviction(artifacts []Artifact, policy Policy, dryRun bool) Plan {
	groups := map[groupKey][]Artifact{}
	for _, a := range artifacts {
		key := groupKey{instance: a.InstanceID, database: a.DatabaseName}
		groups[key] = append(groups[key], a)
	}

	reasons := map[string][]string{}
	seen := map[string]struct{}{}
	for _, group := range groups {
		slices.SortStableFunc(group, func(a, b Artifact) int {
			if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
				return c
			}
			return cmp.Compare(a.Path, b.Path)
		})
		group = uniqueByPath(group)

		for _, window := range TierValues() {
			remaining := policy.Keep(window)
			for _, a := range group {
				if remaining == 0 {
					break
				}
				if !window.Includes(a.Tier()) {
					continue
				}
				reasons[a.Path] = append(reasons[a.Path], window.String())
				remaining--
			}
		}
		for _, a := range group {
			seen[a.Path] = struct{}{}
		}
	}

	plan := Plan{
		Keep:    []string{},
		Delete:  []string{},
		Reasons: reasons,
		DryRun:  dryRun,
	}
	for path := range seen {
		if _, kept := reasons[path]; kept {
			plan.Keep = append(plan.Keep, path)
		} else {
			plan.Delete = append(plan.Delete, path)
		}
	}
	slices.Sort(plan.Keep)
	slices.Sort(plan.Delete)
	return plan
}

// uniqueByPath drops repeated paths from a newest-first group, so each file
// takes at most one slot in a window.
func uniqueByPath(group []Artifact) []Artifact {
	seen := make(map[string]struct{}, len(group))
	unique := group[:0]
	for _, a := range group {
		if _, dup := seen[a.Path]; dup {
			continue
		}
		seen[a.Path] = struct{}{}
		unique = append(unique, a)
	}
	return unique
}
