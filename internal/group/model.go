package group

import "time"

// Group is a named set of members sharing one debt ledger
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Populated from group_members, in membership order
	Members []*Member `json:"members,omitempty"`
}

// Member is a user's membership in a group
type Member struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// HasMember reports whether email belongs to the group
func (g *Group) HasMember(email string) bool {
	for _, m := range g.Members {
		if m.Email == email {
			return true
		}
	}
	return false
}

// MemberEmails returns member keys in membership order
func (g *Group) MemberEmails() []string {
	emails := make([]string, len(g.Members))
	for i, m := range g.Members {
		emails[i] = m.Email
	}
	return emails
}

// Directory maps member keys to display names
func (g *Group) Directory() map[string]string {
	names := make(map[string]string, len(g.Members))
	for _, m := range g.Members {
		names[m.Email] = m.Name
	}
	return names
}
