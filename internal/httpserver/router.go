package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// NewRouter maps the five demo routes onto h. With verbose set, gin runs in
// debug mode and error details including stack traces go back to the client.
func NewRouter(h *Handler, verbose bool, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(recoverWithTrace(verbose, logger)))
	r.Use(DebugErrors(verbose, logger))

	r.GET("/", h.Home)
	r.POST("/login", h.Login)
	r.GET("/ping", h.Ping)
	r.POST("/deserialize", h.Deserialize)
	r.GET("/readfile", h.ReadFile)
	return r
}

// DebugErrors renders errors handlers attached with c.Error as a 500.
// In verbose mode the body is the error with its stack (%+v).
func DebugErrors(verbose bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		if !verbose {
			c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		c.String(http.StatusInternalServerError, "%s\n\n%+v\n", http.StatusText(http.StatusInternalServerError), err)
	}
}

func recoverWithTrace(verbose bool, logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("panic in handler", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		if !verbose {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusInternalServerError, "panic: %v\n\n%s", recovered, debug.Stack())
		c.Abort()
	}
}
