package entity

import "time"

// CardPlacement is a note's position on the free-form card board.
type CardPlacement struct {
	NoteId    string
	UserId    string
	X         float64
	Y         float64
	ZIndex    int64
	Color     string
	UpdatedAt time.Time
}
