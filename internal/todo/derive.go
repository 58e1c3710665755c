package todo

import "time"

// IsAfterDeadline reports whether an unfinished item's deadline has passed at
// now. Finished items and items without a parseable date are never late.
func IsAfterDeadline(item Item, now time.Time) bool {
	if item.Finished {
		return false
	}
	deadline, ok := item.Deadline()
	if !ok {
		return false
	}
	return now.After(deadline)
}

// StateOf classifies a single item. The finished flag wins over the deadline.
func StateOf(item Item, now time.Time) Filter {
	switch {
	case item.Finished:
		return FilterFinished
	case IsAfterDeadline(item, now):
		return FilterMissed
	default:
		return FilterActive
	}
}

// FilterItems returns the items matching f, preserving order. FilterAll and
// unknown filters return items unchanged.
func FilterItems(items []Item, f Filter, now time.Time) []Item {
	switch f {
	case FilterActive, FilterFinished, FilterMissed:
	default:
		return items
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if StateOf(item, now) == f {
			out = append(out, item)
		}
	}
	return out
}

// CountFilters tallies items by state in a single pass.
func CountFilters(items []Item, now time.Time) FilterCounts {
	counts := FilterCounts{All: len(items)}
	for _, item := range items {
		switch StateOf(item, now) {
		case FilterFinished:
			counts.Finished++
		case FilterMissed:
			counts.Missed++
		default:
			counts.Active++
		}
	}
	return counts
}

// Progress is the per-list summary shown on dashboard cards.
type Progress struct {
	Items    int
	Finished int
	Missed   int
}

// Percent returns the finished share in [0, 100].
func (p Progress) Percent() int {
	if p.Items == 0 {
		return 0
	}
	return p.Finished * 100 / p.Items
}

// ProgressOf summarises t at now.
func ProgressOf(t Todo, now time.Time) Progress {
	counts := CountFilters(t.Items, now)
	return Progress{Items: counts.All, Finished: counts.Finished, Missed: counts.Missed}
}
