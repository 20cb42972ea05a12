package domain

import "time"

type User struct {
	ID           string
	Email        string // stored lower-cased and trimmed
	Name         string // display name, may be empty
	PasswordHash string // argon2 encoded, never serialized to clients
	CoupleID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the partner-facing projection of a user. It is what we embed
// in couple and profile payloads so the password hash can never leak.
type Summary struct {
	ID    string
	Email string
	Name  string
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Name: u.Name}
}
