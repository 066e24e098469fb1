package listings

import "time"

// Policy holds the fixed lifecycle constants. Durations and the boost fee are
// policy, not user input, to prevent abuse.
type Policy struct {
	ListingLifetime time.Duration
	BoostDuration   time.Duration
	BoostPrice      int64
}

// DefaultPolicy mirrors production values: 30-day listings, 48-hour boosts
// at a flat fee of 49.
func DefaultPolicy() Policy {
	return Policy{
		ListingLifetime: 30 * 24 * time.Hour,
		BoostDuration:   48 * time.Hour,
		BoostPrice:      49,
	}
}

// BoostDurationHours is the per-boost duration as stored on the record.
func (p Policy) BoostDurationHours() int {
	return int(p.BoostDuration / time.Hour)
}
