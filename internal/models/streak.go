package models

import "time"

// HabitStreak counts consecutive days a user completed a habit kind
// (workout, meals on time). LastDate is the most recent completed day.
type HabitStreak struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Habit     string    `db:"habit" json:"habit"`
	Current   int       `db:"current" json:"current"`
	Longest   int       `db:"longest" json:"longest"`
	LastDate  time.Time `db:"last_date" json:"last_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
