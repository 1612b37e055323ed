package pg

import (
	"time"
)

// Model is embedded by every ledger table. Rows are never removed; Deleted
// hides them from every live query.
type Model struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool `gorm:"not null;default:false;index"`
}
