package specification

import "gorm.io/gorm"

// Specification narrows a board placement query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ByUser filters by owning user.
type ByUser struct {
	UserId string
}

func (s ByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

type ByNote struct {
	NoteId string
}

func (s ByNote) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id = ?", s.NoteId)
}

type ByNotes struct {
	NoteIds []string
}

func (s ByNotes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("note_id IN ?", s.NoteIds)
}
