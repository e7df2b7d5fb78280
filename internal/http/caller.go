package httpapi

import (
	"net/http"
	"strings"

	"fact-registration/internal/domain"
)

// callerFromReq reads the identity the gateway attached to the request.
func callerFromReq(r *http.Request) domain.Caller {
	return domain.Caller{
		UserID: strings.TrimSpace(r.Header.Get("X-User-ID")),
		Role:   strings.TrimSpace(r.Header.Get("X-User-Role")),
	}
}
