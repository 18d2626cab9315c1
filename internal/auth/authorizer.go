package auth

import (
	"context"
	"crypto/subtle"
)

// Operations guarded by the admin key.
const (
	OpManageCatalog   = "catalog.manage"
	OpManageReference = "reference.manage"
	OpManageVariants  = "variants.manage"
)

// ActorInfo contains information about an authenticated actor
type ActorInfo struct {
	ActorID     string   `json:"actor_id"`
	KeyType     string   `json:"key_type"` // 'admin', 'local'
	Permissions []string `json:"permissions"`
}

// Can reports whether the actor holds the permission for operation.
func (a *ActorInfo) Can(operation string) bool {
	for _, p := range a.Permissions {
		if p == "*" || p == operation {
			return true
		}
	}
	return false
}

// Authorizer validates API keys and checks permissions in one call
type Authorizer interface {
	// Authorize validates the API key and checks if the actor can perform operation.
	// Returns ActorInfo if authorized, error if authentication or authorization fails.
	Authorize(ctx context.Context, apiKey, operation string) (*ActorInfo, error)
}

// New returns a StaticKeyAuthorizer for adminKey, or an OpenAuthorizer when
// no key is configured.
func New(adminKey string) Authorizer {
	if adminKey == "" {
		return OpenAuthorizer{}
	}
	return &StaticKeyAuthorizer{key: []byte(adminKey)}
}

// StaticKeyAuthorizer accepts a single configured admin key.
type StaticKeyAuthorizer struct {
	key []byte
}

func (s *StaticKeyAuthorizer) Authorize(_ context.Context, apiKey, operation string) (*ActorInfo, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), s.key) != 1 {
		return nil, ErrInvalidAPIKey
	}
	actor := &ActorInfo{ActorID: "admin", KeyType: "admin", Permissions: []string{"*"}}
	if !actor.Can(operation) {
		return nil, ErrForbidden
	}
	return actor, nil
}

// OpenAuthorizer lets every caller through. Used by local builds without an
// admin key.
type OpenAuthorizer struct{}

func (OpenAuthorizer) Authorize(_ context.Context, _, _ string) (*ActorInfo, error) {
	return &ActorInfo{ActorID: "local", KeyType: "local", Permissions: []string{"*"}}, nil
}
