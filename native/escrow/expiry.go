package escrow

// deadlineExceeded reports whether a height deadline is set and exceeded by
// the current height, or a time deadline is set and exceeded by the current
// wall-clock time. Both comparisons are strict: a record is still live at
// exactly its deadline.
func deadlineExceeded(endHeight *uint64, endTime *int64, height uint64, now int64) bool {
	if endHeight != nil && height > *endHeight {
		return true
	}
	if endTime != nil && now > *endTime {
		return true
	}
	return false
}

// maxDeadlines returns the maximum non-nil height and time deadlines across
// all milestones. Either result is nil when no milestone sets the
// corresponding bound.
func maxDeadlines(milestones []*Milestone) (*uint64, *int64) {
	var endHeight *uint64
	var endTime *int64
	for _, m := range milestones {
		if m == nil {
			continue
		}
		if m.EndHeight != nil && (endHeight == nil || *m.EndHeight > *endHeight) {
			h := *m.EndHeight
			endHeight = &h
		}
		if m.EndTime != nil && (endTime == nil || *m.EndTime > *endTime) {
			t := *m.EndTime
			endTime = &t
		}
	}
	return endHeight, endTime
}
