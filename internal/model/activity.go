package model

import (
	"encoding/json"
	"time"
)

type CategoryView struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	CategoryID string    `db:"category_id"`
	ViewedAt   time.Time `db:"viewed_at"`
}

type SavedSearch struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"-"`
	Name         *string         `db:"name" json:"name"`
	CategoryCode *string         `db:"category_code" json:"category_code"`
	Criteria     json.RawMessage `db:"criteria" json:"query_params"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
