package models

import "time"

// Task statuses. Any status can be set from any other; there is no
// workflow ordering between them.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a single task owned by a user. UserID is always stamped
// from the authenticated caller, never taken from client input.
type Task struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:varchar(20);not null"`
	DueDate     time.Time `json:"due_date" gorm:"not null"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
}
