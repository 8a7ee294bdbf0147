package models

import (
	"strings"
	"time"
)

// OnlineWindow is how long after the last authenticated request a user still counts as online.
const OnlineWindow = 5 * time.Minute

type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	LastSeen  time.Time `json:"last_seen"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsOnline reports whether now - LastSeen is strictly below OnlineWindow.
func (u *User) IsOnline(now time.Time) bool {
	if u == nil || u.LastSeen.IsZero() {
		return false
	}
	return now.Sub(u.LastSeen) < OnlineWindow
}

type UserResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	LastSeen  time.Time `json:"last_seen"`
	Online    bool      `json:"online"`
}

func (u *User) ToResponse(now time.Time) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		LastSeen:  u.LastSeen,
		Online:    u.IsOnline(now),
	}
}
