package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
)

const (
	// ViewerSessionHeader carries the opaque viewer session id in both directions.
	ViewerSessionHeader = "X-Viewer-Session"

	viewerSessionKey = "viewer_session"
)

// ViewerSession attaches a viewer session id to the request, issuing a new one
// when the client did not send a valid id. The id is echoed in the response.
func ViewerSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.FromString(c.GetHeader(ViewerSessionHeader))
		if err != nil || id.IsNil() {
			id = uuid.Must(uuid.NewV4())
		}

		c.Set(viewerSessionKey, id.String())
		c.Header(ViewerSessionHeader, id.String())
		c.Next()
	}
}

// ViewerSessionID returns the session id set by ViewerSession.
func ViewerSessionID(c *gin.Context) string {
	return c.GetString(viewerSessionKey)
}
