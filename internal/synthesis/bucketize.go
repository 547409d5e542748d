package synthesis

import "github.com/codelens/driftscan/internal/types"

// Capacities caps the number of items each plan bucket shows. Items beyond
// a bucket's capacity are dropped from the plan, not errors: the full
// prioritized list stays queryable alongside the plan.
type Capacities struct {
	Immediate  int
	ShortTerm  int
	MediumTerm int
	Backlog    int
}

// DefaultCapacities returns the fixed bucket limits.
func DefaultCapacities() Capacities {
	return Capacities{Immediate: 5, ShortTerm: 10, MediumTerm: 15, Backlog: 20}
}

// Bucket thresholds on the work-item score.
const (
	immediateScore  = 15
	shortTermScore  = 10
	mediumTermScore = 5
)

// Bucketize partitions the sorted work items into time-horizon buckets in a
// single pass. Every item lands in exactly one bucket (or none, once its
// bucket is full).
func Bucketize(items []types.WorkItem, caps Capacities) types.Plan {
	var plan types.Plan

	for _, item := range items {
		switch {
		case item.Severity == types.SeverityCritical || item.Priority >= immediateScore:
			plan.Immediate = append(plan.Immediate, item)
		case item.Severity == types.SeverityHigh || item.Priority >= shortTermScore:
			plan.ShortTerm = append(plan.ShortTerm, item)
		case item.Priority >= mediumTermScore:
			plan.MediumTerm = append(plan.MediumTerm, item)
		default:
			plan.Backlog = append(plan.Backlog, item)
		}
	}

	plan.Immediate = truncate(plan.Immediate, caps.Immediate)
	plan.ShortTerm = truncate(plan.ShortTerm, caps.ShortTerm)
	plan.MediumTerm = truncate(plan.MediumTerm, caps.MediumTerm)
	plan.Backlog = truncate(plan.Backlog, caps.Backlog)
	return plan
}

func truncate(items []types.WorkItem, capacity int) []types.WorkItem {
	if capacity >= 0 && len(items) > capacity {
		return items[:capacity]
	}
	return items
}
