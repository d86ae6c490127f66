package repository

// RemainingCapacity returns how many spots are left for an event given
// its cap and current active count. The second return value is false
// when the event has no cap, in which case remaining is meaningless and
// any batch size is admissible.
func RemainingCapacity(eventCap *int, current int) (int, bool) {
    if eventCap == nil {
        return 0, false
    }
    remaining := *eventCap - current
    if remaining < 0 {
        remaining = 0
    }
    return remaining, true
}

// AdmitBatch decides whether a batch of n attendees fits within the
// remaining capacity. The whole batch is admitted or none of it; on
// rejection the caller is told how many spots remain so it can resubmit
// a smaller batch.
func AdmitBatch(eventCap *int, current, n int) error {
    remaining, capped := RemainingCapacity(eventCap, current)
    if !capped {
        return nil
    }
    if n > remaining {
        return &CapacityExceededError{Remaining: remaining}
    }
    return nil
}
