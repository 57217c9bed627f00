package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/learnloop/learnloop-api/internal/api/shared"
)

// GetUserID extracts the authenticated user's UUID from the request context.
// The user ID is placed in the context by the authentication middleware.
//
// Returns the user's UUID and true if successfully extracted, or a zero UUID
// and false if the user ID is not found or invalid.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
