package models

import (
	"strings"
	"time"
)

// User is the local mirror of an identity-provider account. ID is the
// provider's subject and is never generated locally.
type User struct {
	ID             string    `gorm:"primaryKey;type:varchar(191)" json:"_id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Username       string    `gorm:"index" json:"username"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	Connections    []string  `gorm:"serializer:json;type:text" json:"connections"`
	Followers      []string  `gorm:"serializer:json;type:text" json:"followers"`
	Following      []string  `gorm:"serializer:json;type:text" json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Profile is the canonical account data held by the identity provider
type Profile struct {
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

// NewUserFromProfile builds a fresh record for subject with empty
// connection, follower and following sets.
func NewUserFromProfile(subject string, p Profile) *User {
	username := p.Email
	if at := strings.Index(username, "@"); at >= 0 {
		username = username[:at]
	}

	return &User{
		ID:             subject,
		Email:          p.Email,
		FullName:       strings.TrimSpace(p.FirstName + " " + p.LastName),
		Username:       username,
		ProfilePicture: p.ImageURL,
		Connections:    []string{},
		Followers:      []string{},
		Following:      []string{},
	}
}
