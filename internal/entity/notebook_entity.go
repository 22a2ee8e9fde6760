package entity

import "time"

type Notebook struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	UserId    string     `json:"user_id"`
	IsTrashed bool       `json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (n *Notebook) MarkTrashed(at time.Time) {
	n.IsTrashed = true
	n.TrashedAt = &at
}

func (n *Notebook) MarkRestored() {
	n.IsTrashed = false
	n.TrashedAt = nil
}
