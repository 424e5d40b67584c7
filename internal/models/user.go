package models

// User represents a registered account. Each task belongs to exactly one user.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"` // Never serialized in responses
}
