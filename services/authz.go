package services

import "go.mongodb.org/mongo-driver/bson/primitive"

// Roles carried in access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Action names a capability on a resource.
type Action string

const (
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionModerate Action = "moderate"
)

// Owned is any resource with a single owning author.
type Owned interface {
	OwnerID() primitive.ObjectID
}

// Can is the single capability check used by both post and comment
// operations, so ownership rules cannot drift between the two.
func Can(actor Actor, res Owned, action Action) bool {
	if actor.IsAdmin() {
		return true
	}
	switch action {
	case ActionUpdate, ActionDelete:
		return res.OwnerID() == actor.ID
	default:
		// moderation and anything unrecognized stays admin-only
		return false
	}
}
