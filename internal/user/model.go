package user

import (
	"strings"
	"time"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"not null"`
	UsernameKey    string    `json:"-" gorm:"not null;uniqueIndex"`
	ExternalIDHash string    `json:"-" gorm:"column:hashed_google_id;not null;uniqueIndex"`
	AvatarURL      string    `json:"avatar_url"`
	MemberSince    time.Time `json:"member_since" gorm:"not null"`
}

func (User) TableName() string {
	return "users"
}

// Key is the canonical form usernames are compared by.
func Key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
