package app

import "time"

// SetAdminClock replaces the clock used for token expiry.
func SetAdminClock(g *AdminGate, now func() time.Time) *AdminGate {
	g.now = now
	return g
}
