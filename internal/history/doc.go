// Package history records a receipt for every bundle build in a local
// SQLite database. Receipts are advisory: builds proceed normally when
// the store is disabled or unavailable.
package history
