package entity

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the authenticated caller. It is passed explicitly to every
// service operation instead of being looked up from ambient state.
type Session struct {
	UserID    string
	Email     string
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

func (s *Session) Valid() bool {
	return s != nil && s.UserID != ""
}
