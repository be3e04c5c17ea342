// Package domain contains the core domain model for the scoring engine.
//
// This package defines:
//   - Entities: seasons, episodes, players, leagues, teams, the scoring-event
//     ledger, predictions, and the materialized per-episode score rows
//   - The scoring category enumeration, its bucket classification, and the
//     effective point value resolver
//   - Domain errors for business rule violations
//
// Rules for this package:
//   - No external dependencies except the standard library
//   - No infrastructure concerns (database, HTTP, etc.)
package domain
