package model

import "time"

// Base holds the record-lifecycle fields shared by all persisted entities.
// IDs are assigned by Postgres on insert and immutable afterwards.
type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
