// Package models defines the core domain records for messmate.
//
// # Persisted records
//
//   - User: a mess member's identity record, cached per device
//   - Member: the active-roster row derived from user status
//   - Expense: a financial event (shared cost or PAYMENT settlement)
//   - MealDay: one row per (member, date) with three meal flags
//   - MealPrice: unit prices effective from a given date
//
// # Derived records
//
//   - ExpenseBreakdown: per-member or mess-wide monthly aggregate,
//     recomputed on demand and never persisted
//
// Every locally created Expense and every modified MealDay carries a
// SyncState; the sync engine drains pending rows to the remote store and
// flips them to synced, while remote-origin upserts always arrive already
// synced.
//
// Dates are plain "yyyy-mm-dd" strings and months are "yyyy-mm" prefixes of
// them, matching the remote wire contract.
package models
