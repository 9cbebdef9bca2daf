package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/angelmondragon/graingrove-backend/pkg/config"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

// SessionHeader lets API clients that do not keep cookies carry their cart session.
const SessionHeader = "X-Cart-Session"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// Session resolves the anonymous cart session from the header or cookie, issuing a new one
// when neither carries a usable id. The id is echoed back in both.
func Session(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	cookieName := cfg.SessionCookie
	if cookieName == "" {
		cookieName = "gg_session"
	}
	maxAge := int(cfg.SnapshotTTL.Seconds())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if !sessionIDPattern.MatchString(sessionID) {
				sessionID = ""
				if cookie, err := r.Cookie(cookieName); err == nil && sessionIDPattern.MatchString(cookie.Value) {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   maxAge,
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(SessionHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
