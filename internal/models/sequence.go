package models

import "time"

// DocumentSequence is the persisted numbering counter for one kind and year.
// LastValue is the last number handed out; it is only incremented inside the
// transaction that inserts the numbered record.
type DocumentSequence struct {
	Kind      DocumentKind `gorm:"type:varchar(32);primaryKey" json:"kind"`
	Year      int          `gorm:"primaryKey;autoIncrement:false" json:"year"`
	LastValue int64        `gorm:"not null" json:"last_value"`
	UpdatedAt time.Time    `json:"updated_at"`
}
