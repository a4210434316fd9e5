package user

import (
	"strings"
	"time"
)

// User is a participant. The normalized email is the identity key.
type User struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail trims and lower-cases an email so it can be used as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Directory maps participant keys to display names.
func Directory(users []*User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.Email] = u.Name
	}
	return names
}
