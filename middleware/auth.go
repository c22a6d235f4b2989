package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"cleanblog/config"
	"cleanblog/utils"
)

const (
	// SessionCookieName is the cookie carrying the admin session token.
	SessionCookieName = "blog_session"
	// ContextAdminKey stores the authenticated admin username in Gin context.
	ContextAdminKey = "admin_username"
)

// Authenticator validates a credential pair. The single configured admin
// identity hides behind this interface so it could later be swapped for a
// real identity provider without touching route logic.
type Authenticator interface {
	Authenticate(username, password string) bool
}

// CredentialAuthenticator checks against the admin credential from config:
// constant-time comparison for the username, bcrypt for the password.
type CredentialAuthenticator struct {
	username     string
	passwordHash string
}

// NewCredentialAuthenticator builds the authenticator from loaded config.
func NewCredentialAuthenticator(cfg *config.AppConfig) *CredentialAuthenticator {
	return &CredentialAuthenticator{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
	}
}

// Authenticate reports whether the pair matches the configured credential.
func (a *CredentialAuthenticator) Authenticate(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := utils.CheckPassword(a.passwordHash, password)
	return userOK && passOK
}

// IsAdmin reports whether the request carries a session resolving to the
// configured admin username.
func IsAdmin(ctx *gin.Context, cfg *config.AppConfig) bool {
	token, err := ctx.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	username, ok := utils.SessionUsername(token)
	return ok && username == cfg.AdminUsername
}

// AdminRequired guards admin routes: any request without a valid admin
// session is redirected to the login page. It is the single authorization
// check in front of every admin-scoped handler.
func AdminRequired(cfg *config.AppConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !IsAdmin(ctx, cfg) {
			ctx.Redirect(http.StatusSeeOther, "/admin-login")
			ctx.Abort()
			return
		}
		ctx.Set(ContextAdminKey, cfg.AdminUsername)
		ctx.Next()
	}
}
