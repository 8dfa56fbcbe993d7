package models

import "fmt"

// Relation kinds a user can hold against a resource.
const (
	RelationFollow = "follow"
	RelationOwn    = "own"
	RelationRead   = "read"
)

// ValidateRelation rejects relation names outside the supported set.
func ValidateRelation(relation string) error {
	switch relation {
	case RelationFollow, RelationOwn, RelationRead:
		return nil
	default:
		return fmt.Errorf("unsupported relation %q", relation)
	}
}

// User is a catalog user or table owner. Owners synthesized from record
// fields carry a generated email and no employment detail.
type User struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	IsActive    bool   `json:"is_active"`
	TeamName    string `json:"team_name"`
	Role        string `json:"role"`
}

// UserResources groups the tables a user follows, owns, and recently read.
type UserResources struct {
	Follow []TableSummary `json:"follow"`
	Own    []TableSummary `json:"own"`
	Read   []TableSummary `json:"read"`
}
