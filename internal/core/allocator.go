package core

// NextID returns the tournament number for the next athlete: one past the
// highest number in use, or 1 for an empty roster. Callers must read maxID
// and insert the new athlete in the same transaction.
func NextID(maxID int64) int64 {
	if maxID <= 0 {
		return 1
	}
	return maxID + 1
}
