// Package state is a small key/value store kept in the database
package state

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type State struct {
	db *gorm.DB
}

func NewState(db *gorm.DB) (*State, error) {
	if err := db.AutoMigrate(&StateEntry{}); err != nil {
		return nil, err
	}
	return &State{db: db}, nil
}

// Get returns the value for key, or "" when the key is not set
func (s *State) Get(key string) (string, error) {
	var entry StateEntry
	result := s.db.Where("key = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return entry.Value, nil
}

// Set upserts key=value
func (s *State) Set(key, value string) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&StateEntry{Key: key, Value: value}).Error
}

// SetMany writes several keys in one transaction
func (s *State) SetMany(values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		txState := &State{db: tx}
		for k, v := range values {
			if err := txState.Set(k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *State) Delete(key string) error {
	return s.db.Where("key = ?", key).Delete(&StateEntry{}).Error
}
