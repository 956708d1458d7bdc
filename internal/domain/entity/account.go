package entity

import (
	"time"
)

// Account is the aggregate root for the user-account domain.
// PasswordHash holds a bcrypt hash and must never leave the service layer.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	PhoneNumber  string
	BirthDate    *time.Time
	ImagePath    string
	IsActive     bool
	Created      time.Time
	Modified     time.Time
	LastLogin    *time.Time
}

// FullName joins first and last name, tolerating either being empty.
func (a *Account) FullName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
