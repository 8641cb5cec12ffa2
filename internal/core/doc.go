// Package core defines the data model shared by every locator: environment
// records, managers, the Locator and Reporter contracts and telemetry events.
package core
