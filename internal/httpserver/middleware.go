package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"worklog/internal/handler"
	"worklog/pkg/logger"
	"worklog/pkg/metrics"
	"worklog/pkg/rbac"
	"worklog/pkg/trace"
	"worklog/pkg/util"
)

// AuthMiddleware verifies the access token and stores the identity on the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			handler.Fail(c, http.StatusUnauthorized, handler.MsgNoToken)
			c.Abort()
			return
		}

		identity, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			handler.Fail(c, http.StatusUnauthorized, handler.MsgInvalidToken)
			c.Abort()
			return
		}

		handler.SetIdentity(c, identity)
		c.Next()
	}
}

// RequirePermission 中间件：要求用户角色具有指定权限
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := handler.CurrentIdentity(c)
		if !ok {
			handler.Fail(c, http.StatusUnauthorized, handler.MsgNoToken)
			c.Abort()
			return
		}

		if err := rbac.CheckPermission(identity.Role, permission); err != nil {
			handler.Fail(c, http.StatusForbidden, handler.MsgPermissionDenied)
			c.Abort()
			return
		}

		c.Next()
	}
}

// TraceMiddleware 为每个请求注入 trace_id (reuses an incoming X-Trace-ID)
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName())
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	}
}

// QueryTimeout bounds every downstream call of a request, database included.
func QueryTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger 记录请求日志并上报 HTTP 延迟
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RecordHTTPRequestDuration(c.Request.Method, route, strconv.Itoa(status), elapsed)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if identity, ok := handler.CurrentIdentity(c); ok {
			fields = append(fields, zap.Int64("user_id", identity.ID))
		}

		l := logger.WithTrace(c.Request.Context(), log)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("HTTP request", fields...)
		default:
			l.Info("HTTP request", fields...)
		}
	}
}
