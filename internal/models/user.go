package models

import (
	"regexp"
	"strings"
	"time"
)

// User is an account identified by a unique username and phone number.
// There is no password; login is a plain username lookup.
type User struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	PhoneNumber string     `json:"phoneNumber"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLogin   *time.Time `json:"lastLogin"`
	IsActive    bool       `json:"isActive"`
}

// Profile is the public subset of a user returned by the API.
type Profile struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

// Profile returns the public view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

var phoneNumberRe = regexp.MustCompile(`^\+?[\d\s\-()]+$`)

// NormalizeUsername lowercases and trims a username. Usernames are stored
// and compared in this form.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername reports whether a normalized username has an acceptable length.
func ValidUsername(username string) bool {
	return len(username) >= 3 && len(username) <= 30
}

// ValidPhoneNumber reports whether a phone number looks plausible
// (digits with optional +, spaces, dashes, parentheses).
func ValidPhoneNumber(phone string) bool {
	return phone != "" && phoneNumberRe.MatchString(phone)
}
