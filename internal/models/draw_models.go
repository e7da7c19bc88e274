// Package models contains the models for the SSQ API
package models

import (
	"time"

	"github.com/nsvirk/ssqapi/internal/lottery"
)

const DrawsTableName = "historical_draws"

// DrawModel is one historical draw. Red1..Red6 are ascending; RedNOrder keep the
// order the balls were drawn in.
type DrawModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	IssueNumber string    `gorm:"uniqueIndex;size:7;not null" json:"issue_number"`
	Red1        string    `gorm:"column:red_1;size:2;not null;index:idx_draw_combo,priority:1" json:"red_1"`
	Red2        string    `gorm:"column:red_2;size:2;not null;index:idx_draw_combo,priority:2" json:"red_2"`
	Red3        string    `gorm:"column:red_3;size:2;not null;index:idx_draw_combo,priority:3" json:"red_3"`
	Red4        string    `gorm:"column:red_4;size:2;not null;index:idx_draw_combo,priority:4" json:"red_4"`
	Red5        string    `gorm:"column:red_5;size:2;not null;index:idx_draw_combo,priority:5" json:"red_5"`
	Red6        string    `gorm:"column:red_6;size:2;not null;index:idx_draw_combo,priority:6" json:"red_6"`
	Red1Order   string    `gorm:"column:red_1_order;size:2" json:"red_1_order"`
	Red2Order   string    `gorm:"column:red_2_order;size:2" json:"red_2_order"`
	Red3Order   string    `gorm:"column:red_3_order;size:2" json:"red_3_order"`
	Red4Order   string    `gorm:"column:red_4_order;size:2" json:"red_4_order"`
	Red5Order   string    `gorm:"column:red_5_order;size:2" json:"red_5_order"`
	Red6Order   string    `gorm:"column:red_6_order;size:2" json:"red_6_order"`
	Blue        string    `gorm:"size:2;not null;index:idx_draw_combo,priority:7" json:"blue"`
	DrawDate    time.Time `gorm:"type:date;index" json:"draw_date"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (DrawModel) TableName() string {
	return DrawsTableName
}

// NewDrawModel maps a parsed result to a row
func NewDrawModel(r lottery.Result) DrawModel {
	s := r.SortedReds()
	o := r.OrderReds
	f := lottery.FormatBall
	return DrawModel{
		IssueNumber: r.Issue,
		Red1:        f(s[0]),
		Red2:        f(s[1]),
		Red3:        f(s[2]),
		Red4:        f(s[3]),
		Red5:        f(s[4]),
		Red6:        f(s[5]),
		Red1Order:   f(o[0]),
		Red2Order:   f(o[1]),
		Red3Order:   f(o[2]),
		Red4Order:   f(o[3]),
		Red5Order:   f(o[4]),
		Red6Order:   f(o[5]),
		Blue:        f(r.Blue),
		DrawDate:    r.DrawDate,
	}
}

// SortedReds returns the six canonical red columns
func (d DrawModel) SortedReds() []string {
	return []string{d.Red1, d.Red2, d.Red3, d.Red4, d.Red5, d.Red6}
}

// OrderReds returns the six red columns in draw order
func (d DrawModel) OrderReds() []string {
	return []string{d.Red1Order, d.Red2Order, d.Red3Order, d.Red4Order, d.Red5Order, d.Red6Order}
}
