// Package types defines the Inventory and table interfaces, the typed entity
// records, partial-update and filter structs, and the error taxonomy for the
// Craft Compass storage layer.
//
// Callers never see storage rows: every table hands out the structs in this
// package and reports failures with the errors declared in errors.go.
package types
