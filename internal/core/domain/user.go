package domain

import "time"

// Role names that carry authorization weight. Any other role is display-only.
const (
	RoleAdmin   = "admin"
	RoleSupport = "support"
	RoleClient  = "client"
)

// User models an authenticated actor in the system.
type User struct {
	ID           string       `json:"id" bson:"_id"`
	Username     string       `json:"username" bson:"username"`
	Email        string       `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash string       `json:"-" bson:"password_hash"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	Memberships  []Membership `json:"-" bson:"-"`
}

// RoleNames returns the distinct names of the roles the user holds, in
// membership order.
func (u *User) RoleNames() []string {
	seen := make(map[string]struct{}, len(u.Memberships))
	names := make([]string, 0, len(u.Memberships))
	for _, m := range u.Memberships {
		if _, ok := seen[m.RoleName]; ok {
			continue
		}
		seen[m.RoleName] = struct{}{}
		names = append(names, m.RoleName)
	}
	return names
}

// Role is a named permission group. Names are unique case-insensitively.
type Role struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// Membership links a user to a role. At most one exists per (user, role).
type Membership struct {
	UserID     string    `json:"user_id" bson:"user_id"`
	RoleID     string    `json:"role_id" bson:"role_id"`
	RoleName   string    `json:"role_name" bson:"role_name"`
	AssignedAt time.Time `json:"assigned_at" bson:"assigned_at"`
}
