package sla

import "time"

// DerivedStatus is a read computed from the clock and the level's window; it
// is never stored.
type DerivedStatus string

const (
	OnTrack  DerivedStatus = "on_track"
	AtRisk   DerivedStatus = "at_risk"
	Breached DerivedStatus = "breached"
)

// DefaultAtRiskFraction is the tail share of the window reported as at_risk.
const DefaultAtRiskFraction = 0.2

// Status classifies now against a level's [activatedAt, dueAt] window.
// atRiskFraction is the final share of the window considered at risk; values
// outside (0,1) fall back to DefaultAtRiskFraction.
func Status(activatedAt, dueAt, now time.Time, atRiskFraction float64) DerivedStatus {
	if atRiskFraction <= 0 || atRiskFraction >= 1 {
		atRiskFraction = DefaultAtRiskFraction
	}
	if !now.Before(dueAt) {
		return Breached
	}
	window := dueAt.Sub(activatedAt)
	if window <= 0 {
		return Breached
	}
	riskStart := dueAt.Add(-time.Duration(float64(window) * atRiskFraction))
	if !now.Before(riskStart) {
		return AtRisk
	}
	return OnTrack
}
