package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"matchengine/pkg/common"
	"matchengine/pkg/logger"
	"matchengine/pkg/xerr"
)

// Recover turns a panic inside a handler into a 500 response instead of
// crashing the HTTP listener. The matching engine's own per-symbol actors
// recover independently (internal/engine.symbolActor.handleSafely); this
// is the transport-layer backstop for bugs in the handler/marshal code
// itself.
func Recover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "http panic",
					zap.String("request_id", common.RequestIDFromGin(c)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", err),
					zap.ByteString("stack", debug.Stack()),
				)
				common.Fail(c, http.StatusInternalServerError, xerr.ServerCommonError, xerr.MapErrMsg(xerr.ServerCommonError))
				c.Abort()
			}
		}()
		c.Next()
	}
}
