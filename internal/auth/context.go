package auth

import "github.com/gin-gonic/gin"

const principalKey = "principal"

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   string
	Name string
	Role Role
}

// SetPrincipal stores the principal into the gin context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the authenticated principal, if any.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok && p.ID != "" {
			return p, true
		}
	}
	return Principal{}, false
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	p, _ := GetPrincipal(c)
	return p.ID
}
