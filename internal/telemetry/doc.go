// Package telemetry publishes loop frames: length-limited per-entity traces
// for plotting and export, and a websocket hub streaming frames as JSON.
package telemetry
