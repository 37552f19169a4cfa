// Package core provides the roster logic for EntryDesk.
//
// It contains all domain logic independent of any transport or storage
// engine and is shared by the HTTP server, the admin CLI and tests.
//
// # Ingestion pipeline
//
// A spreadsheet upload flows through four stages:
//
//  1. [ReadSheet] decodes CSV or XLSX bytes into a header and raw rows.
//  2. [ProcessSheet] checks the required columns once, drops blank rows and
//     runs the [RowValidator] on every remaining row.
//  3. [FindDuplicate] compares each candidate with the persisted athletes
//     that share its date of birth.
//  4. [NextID] allocates the athlete's tournament number.
//
// Stages 3 and 4 run inside one [Store] transaction together with the insert,
// so concurrent registrations can neither share a number nor both pass the
// duplicate check. Each row commits on its own: a failed row leaves earlier
// rows in place (partial success).
//
// # Write lock
//
// Every mutating [Service] method fails with [ErrWritesDisabled] while
// registrations are closed. Reads keep working.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a code for support reference:
//
//   - ROW001-ROW003: row validation
//   - DUP001: duplicate athlete
//   - FILE001-FILE005: spreadsheet problems
//   - LOCK001: registrations closed
//   - DB001-DB006: storage failures
//   - UPL001-UPL003: import throttling and cancellation
package core
