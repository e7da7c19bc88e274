// Package models contains the models for the SSQ API
package models

import (
	"fmt"
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
)

const PlaysTableName = "generated_plays"

// PlayModel is a play handed out to a user
type PlayModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Red1        string    `gorm:"column:red_1;size:2;not null" json:"red_1"`
	Red2        string    `gorm:"column:red_2;size:2;not null" json:"red_2"`
	Red3        string    `gorm:"column:red_3;size:2;not null" json:"red_3"`
	Red4        string    `gorm:"column:red_4;size:2;not null" json:"red_4"`
	Red5        string    `gorm:"column:red_5;size:2;not null" json:"red_5"`
	Red6        string    `gorm:"column:red_6;size:2;not null" json:"red_6"`
	Blue        string    `gorm:"size:2;not null" json:"blue"`
	GeneratedAt time.Time `gorm:"autoCreateTime;index" json:"generated_at"`
}

func (PlayModel) TableName() string {
	return PlaysTableName
}

// NewPlayModel maps a standard domain play to a row
func NewPlayModel(userID uint, p lottery.Play) (PlayModel, error) {
	if len(p.Reds) != lottery.RedCount {
		return PlayModel{}, fmt.Errorf("play has %d reds, want %d", len(p.Reds), lottery.RedCount)
	}
	return PlayModel{
		UserID: userID,
		Red1:   p.Reds[0],
		Red2:   p.Reds[1],
		Red3:   p.Reds[2],
		Red4:   p.Reds[3],
		Red5:   p.Reds[4],
		Red6:   p.Reds[5],
		Blue:   p.Blue,
	}, nil
}

// Play converts the row back to a play
func (m PlayModel) Play() lottery.Play {
	return lottery.Play{
		Reds: []string{m.Red1, m.Red2, m.Red3, m.Red4, m.Red5, m.Red6},
		Blue: m.Blue,
	}
}
