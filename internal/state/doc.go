// Package state provides filesystem-backed storage for run history,
// archived request payloads, and scheduled plans.
package state
