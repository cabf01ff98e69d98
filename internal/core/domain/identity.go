package domain

import "fmt"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleMonitor  Role = "monitor"
)

// ParseRole validates a role name coming from config or storage.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOperator, RoleMonitor:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Identity is attached to a connection at accept time and is immutable for
// the connection's lifetime.
type Identity struct {
	ID   string
	Name string
	Role Role
}
