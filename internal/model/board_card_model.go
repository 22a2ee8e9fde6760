package model

import "time"

type BoardCard struct {
	UserId    string    `gorm:"type:varchar(64);primaryKey"`
	NoteId    string    `gorm:"type:varchar(64);primaryKey"`
	X         float64   `gorm:"not null;default:0"`
	Y         float64   `gorm:"not null;default:0"`
	ZIndex    int64     `gorm:"not null;default:0;index"`
	Color     string    `gorm:"type:varchar(16);not null;default:'#ffffff'"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (BoardCard) TableName() string {
	return "board_cards"
}
