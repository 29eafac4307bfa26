package identity

import "campus-chat/chat-api/internal/domain/permission"

// Principal is the already-authenticated actor supplied by the auth
// collaborator. The core never performs credential checks itself.
type Principal struct {
	ID   int64
	Role permission.Role
}
