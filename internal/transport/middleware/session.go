package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mondido/hosted-checkout/internal"
)

const sessionCookieName = "cart_session"

// Session assigns every visitor a cart session id and carries it through
// the request context. The id is all the cart store keys on; the cookie is
// the only state the browser holds.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string

		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    sessionID,
				Path:     "/",
				Expires:  time.Now().Add(48 * time.Hour),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := internal.ContextWithSessionID(r.Context(), sessionID)

		// the fronting platform injects the authenticated customer, guests
		// carry no header and stay at zero
		if header := r.Header.Get("X-Customer-ID"); header != "" {
			if customerID, err := strconv.ParseInt(header, 10, 64); err == nil {
				ctx = internal.ContextWithCustomerID(ctx, customerID)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
