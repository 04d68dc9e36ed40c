// Package models defines the core domain models for Stockroom.
//
// # Storage Model
//
// All durable state lives in a remote row store (a spreadsheet service)
// with three data sheets plus one for seller accounts:
//   - Stock: current product state, one row per product
//   - History: append-only audit trail, one row per mutation
//   - Bills: receipts, one row per line item
//   - Sellers: registered seller accounts
//
// Sheets hold strings, so models carry parsed values and the storage
// layers own the string conversion in both directions.
//
// # Design Principles
//
//  1. Products are identified by name, matched case-insensitively; the
//     numeric ID column exists only for human readability in the sheet.
//  2. A bill spans multiple physical rows (one per line item); the grand
//     total and notes are populated only on the final row. Readers must
//     sum line totals and take summary fields from the last row.
//  3. Carts are process memory only, never persisted.
package models
