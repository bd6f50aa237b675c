package domain

import "time"

// User is the minimal view of an account the opening engine needs.
type User struct {
	ID        string    `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
