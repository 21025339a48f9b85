package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"matchengine/pkg/common"
)

// ReqId assigns (or propagates) a request ID for every HTTP call, stored
// both on the gin context and the request's context.Context under
// common.CtxKeyRequestID, and echoed in the response header. pkg/logger
// does not read this key (it only injects trace_id), so handlers that log
// it add it explicitly via common.RequestIDFromGin.
func ReqId() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(common.HeaderRequestID)
		if rid == "" {
			rid = common.New()
		}
		c.Set(common.CtxKeyRequestID, rid)
		ctx := context.WithValue(c.Request.Context(), common.CtxKeyRequestID, rid)
		c.Request = c.Request.WithContext(ctx)
		c.Header(common.HeaderRequestID, rid)
		c.Next()
	}
}
