package dto

import "time"

type SyncResponse struct {
	Notes     int       `json:"notes"`
	Notebooks int       `json:"notebooks"`
	Loading   bool      `json:"loading"`
	SyncedAt  time.Time `json:"synced_at"`
}
