package models

import "time"

// Action is the kind of ledger mutation recorded in the history sheet.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionSale   Action = "sale"
)

// HistoryRecord is one immutable audit-trail entry. Records are append-only
// and ordered by insertion; they are never updated or deleted.
type HistoryRecord struct {
	Date        time.Time
	User        string
	Action      Action
	ProductName string
	Quantity    int
	Note        string
}
