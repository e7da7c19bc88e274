package state

import (
	"time"
)

var StateTableName = "_state"

// StateEntry is one key/value row
type StateEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StateEntry) TableName() string {
	return StateTableName
}
