package metadata

import (
	"net/http"

	"downloadgate/pkg/platform/privacy"
	"downloadgate/pkg/requestcontext"
)

// ClientMetadata resolves the client address and User-Agent from the request
// and adds them to the context for use by handlers and services.
// trustedHeader names the edge-proxy header consulted before X-Forwarded-For.
// This middleware should be applied early in the chain.
func ClientMetadata(trustedHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			address := ClientAddressFromRequest(r, trustedHeader)
			ctx := requestcontext.WithClientMetadata(r.Context(), address, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientAddressFromRequest extracts the client address from proxy headers.
// RemoteAddr is never consulted; without forwarding headers the address is "unknown".
func ClientAddressFromRequest(r *http.Request, trustedHeader string) string {
	return privacy.ClientAddress(r.Header.Get, trustedHeader)
}
