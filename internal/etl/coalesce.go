package etl

// CoalesceInt returns the first non-nil value, or nil when all are nil.
// Callers pass the API-reported value first so it wins over locally
// computed scores.
func CoalesceInt(vals ...*int) *int {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// CoalesceString returns the first non-nil value, or nil when all are nil.
func CoalesceString(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// CoalesceBool returns the first non-nil value, or nil when all are nil.
func CoalesceBool(vals ...*bool) *bool {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
