// Package access decides who may see and change which complaints.
package access

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = models.RoleUser
	RoleAdmin Role = models.RoleAdmin
)

// Identity is the verified caller of a request. The only implementations
// are User and Admin.
type Identity interface {
	SubjectID() uuid.UUID
	Role() Role
	identity()
}

type User struct {
	ID uuid.UUID
}

func (u User) SubjectID() uuid.UUID { return u.ID }
func (User) Role() Role             { return RoleUser }
func (User) identity()              {}

type Admin struct {
	ID uuid.UUID
}

func (a Admin) SubjectID() uuid.UUID { return a.ID }
func (Admin) Role() Role             { return RoleAdmin }
func (Admin) identity()              {}

// NewIdentity builds the variant for role. Unknown roles are rejected.
func NewIdentity(id uuid.UUID, role string) (Identity, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("empty subject")
	}
	switch Role(role) {
	case RoleUser:
		return User{ID: id}, nil
	case RoleAdmin:
		return Admin{ID: id}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func IsAdmin(id Identity) bool {
	_, ok := id.(Admin)
	return ok
}
