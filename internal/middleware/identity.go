package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Principal is the authenticated caller of a request.  JWTAuth stores it
// in the echo context; handlers pass UserID explicitly to every scoped
// store call.
type Principal struct {
	UserID uint64
	Role   string
}

// PrincipalFrom returns the caller stored by JWTAuth.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

// SetPrincipal stores p on the context.  Tests use it to bypass token
// parsing.
func SetPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
}

// userKey identifies the caller for rate limiting, or "anon".
func userKey(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return strconv.FormatUint(p.UserID, 10)
	}
	return "anon"
}
