package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/config"
)

// CORS allows the configured front-end origins. Credentials are needed for
// the session cookie, so wildcard origins are never combined with them.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if len(cfg.AllowedOrigins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = !cfg.AllowCredentials
		if cfg.AllowCredentials {
			c.AllowOriginFunc = func(string) bool { return false }
		}
	}
	return cors.New(c)
}
