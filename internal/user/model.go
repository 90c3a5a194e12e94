package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is a persisted account row. A row is created the first time an OAuth
// provider vouches for an email we have not seen.
type User struct {
	ID         int64
	Email      string
	Name       string
	Picture    string
	Role       Role
	Provider   string
	ProviderID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Authority returns the granted-authority tag for the user's role.
func (u *User) Authority() string {
	return "ROLE_" + string(u.Role)
}
