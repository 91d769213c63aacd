package entity

// Role is the privilege level stored on a user record.
// Stored as a small integer: 0 for ordinary users, 1 for administrators.
type Role int

const (
	RoleUser  Role = 0
	RoleAdmin Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}
