package model

import "time"

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;size:150;not null"`
	Email     string `gorm:"uniqueIndex;size:254;not null"`
	Password  string `gorm:"size:255;not null"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName is the full name when one was given, otherwise the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
