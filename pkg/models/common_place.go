package models

import "time"

// CommonPlaceAlias names a kind of place (for example "central_square") that
// missions can refer to independently of the settlement.
type CommonPlaceAlias struct {
	ID          string `json:"id" db:"id" yaml:"id"`
	Name        string `json:"name" db:"name" yaml:"name"`
	Description string `json:"description,omitempty" db:"description" yaml:"description"`
}

// CommonPlace is a crowd-agreed point for an alias inside one settlement.
// Temporary places are single submissions waiting for consensus; at most one
// approved place exists per (settlement, alias).
type CommonPlace struct {
	ID         string        `json:"id" db:"id"`
	Settlement string        `json:"settlement" db:"settlement"`
	Alias      string        `json:"alias" db:"alias"`
	UserID     string        `json:"user_id,omitempty" db:"user_id"`
	Coordinate GeoCoordinate `json:"coordinate" db:"coordinate"`
	Cell       string        `json:"cell" db:"cell"`
	IsApproved bool          `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}
