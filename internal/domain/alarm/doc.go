// Package alarm contains core domain types for the alarm lifecycle.
//
// It defines Status (idle or alarming), Request (what an alarm shows),
// StopReason (why an alarm ended), Actor (who dismissed it) and Snapshot
// (the alarm at a point in time) with Clone helpers to avoid leaking
// internal references.
package alarm
