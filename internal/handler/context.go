package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"worklog/pkg/util"
)

// IdentityKey is the gin context key set by the auth middleware.
const IdentityKey = "identity"

// SetIdentity stores the verified token identity on the request.
func SetIdentity(c *gin.Context, id *util.Identity) {
	c.Set(IdentityKey, id)
}

// CurrentIdentity returns the identity stored by the auth middleware.
func CurrentIdentity(c *gin.Context) (*util.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*util.Identity)
	return id, ok && id != nil
}

// mustIdentity answers 401 when the route was mounted without the auth middleware.
func mustIdentity(c *gin.Context) (*util.Identity, bool) {
	id, ok := CurrentIdentity(c)
	if !ok {
		Fail(c, http.StatusUnauthorized, MsgNoToken)
		return nil, false
	}
	return id, true
}
