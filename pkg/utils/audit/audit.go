// Package audit records administrative actions in the database
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var LogsTableName = "_audit_logs"

// Level represents the severity of an audit entry
type Level string

const (
	INFO  Level = "INFO"
	WARN  Level = "WARN"
	ERROR Level = "ERROR"
)

// Entry is a single audit record
type Entry struct {
	ID        uint32         `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"index" json:"timestamp"`
	Package   string         `gorm:"index" json:"package"`
	Level     Level          `gorm:"index" json:"level"`
	Actor     string         `gorm:"index" json:"actor"`
	Action    string         `gorm:"index" json:"action"`
	Fields    datatypes.JSON `json:"fields,omitempty"`
}

// TableName overrides the table name used by Entry
func (Entry) TableName() string {
	return LogsTableName
}

// Logger writes audit entries for one package
type Logger struct {
	db          *gorm.DB
	packageName string
}

// New creates a new audit Logger, migrating the table if needed
func New(db *gorm.DB, packageName string) (*Logger, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit table %s: %v", LogsTableName, err)
	}
	return &Logger{db: db, packageName: packageName}, nil
}

func (l *Logger) write(level Level, actor, action string, fields map[string]interface{}) error {
	var fieldsJSON datatypes.JSON
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields: %v", err)
		}
		fieldsJSON = datatypes.JSON(b)
	}

	entry := Entry{
		Timestamp: time.Now(),
		Package:   l.packageName,
		Level:     level,
		Actor:     actor,
		Action:    action,
		Fields:    fieldsJSON,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to insert audit entry: %v", err)
	}
	return nil
}

// Info records a successful action. A nil Logger is a no-op.
func (l *Logger) Info(actor, action string, fields map[string]interface{}) {
	l.record(INFO, actor, action, fields)
}

// Warn records a degraded action, e.g. a crawl that fell back to placeholder data
func (l *Logger) Warn(actor, action string, fields map[string]interface{}) {
	l.record(WARN, actor, action, fields)
}

// Error records a failed action
func (l *Logger) Error(actor, action string, fields map[string]interface{}) {
	l.record(ERROR, actor, action, fields)
}

func (l *Logger) record(level Level, actor, action string, fields map[string]interface{}) {
	if l == nil {
		return
	}
	if err := l.write(level, actor, action, fields); err != nil {
		zaplogger.Error("Failed to write audit entry", zaplogger.Fields{
			"action": action,
			"error":  err.Error(),
		})
	}
}

// Recent returns the latest audit entries, newest first
func (l *Logger) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := l.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
