package policy

import (
	"net/http"

	"nivaas/middleware"
	"nivaas/utils"
)

// Authorize checks the caller's role against the operation and, when
// communityID is non-empty, that the caller belongs to that community.
// On failure it writes the 403 itself and returns false.
func Authorize(w http.ResponseWriter, r *http.Request, op, communityID string) bool {
	if !Can(middleware.RequesterRole(r), op) {
		utils.RespondWithError(w, http.StatusForbidden, "operation not allowed for your role")
		return false
	}
	if communityID != "" && middleware.RequesterCommunity(r) != communityID {
		utils.RespondWithError(w, http.StatusForbidden, "resource belongs to another community")
		return false
	}
	return true
}
