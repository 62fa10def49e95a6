package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// personIDFromRequest pulls the authenticated person's ID out of the access
// token claims. An empty string means the token is malformed; the auth
// middleware has already rejected missing tokens by the time handlers run.
func personIDFromRequest(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	personID, _ := claims["person_id"].(string)
	return personID
}
