package models

import "errors"

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

type User struct {
	UserID      string  `json:"user_id"`
	Email       *string `json:"email"`
	DisplayName string  `json:"display_name"`
}

// HasEmail returns true if the user can receive reminder emails
func (u *User) HasEmail() bool {
	return u != nil && u.Email != nil && *u.Email != ""
}

// EmailAddress returns the address or an empty string.
func (u *User) EmailAddress() string {
	if !u.HasEmail() {
		return ""
	}
	return *u.Email
}

// DueUser is a user together with only the events that matched a reminder query.
type DueUser struct {
	User
	Events []*Event `json:"events"`
}
