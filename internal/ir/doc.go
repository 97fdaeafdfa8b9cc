// Package ir provides the shared value types for asksort.
//
// This package contains type definitions and their serialization only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Identities are NFC-normalized so that visually identical names collapse
//     to the same item
//   - A Judgment is a directed edge winner > loser; its inverse is implied
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
