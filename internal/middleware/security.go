package middleware

import (
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

const contentSecurityPolicy = "default-src 'self'; base-uri 'self'; font-src 'self' https: data:; " +
	"form-action 'self'; frame-ancestors 'self'; img-src 'self' data: https:; object-src 'none'; " +
	"script-src 'self'; script-src-attr 'none'; style-src 'self' 'unsafe-inline'; upgrade-insecure-requests"

// docsPrefix is served without a content security policy, the swagger UI relies on inline scripts
const docsPrefix = "/swagger/"

func secureConfig(csp string) secure.Config {
	return secure.Config{
		STSSeconds:              15552000,
		STSIncludeSubdomains:    true,
		CustomFrameOptionsValue: "SAMEORIGIN",
		ContentTypeNosniff:      true,
		ContentSecurityPolicy:   csp,
		IENoOpen:                true,
		ReferrerPolicy:          "no-referrer",
		SSLProxyHeaders:         map[string]string{"X-Forwarded-Proto": "https"},
	}
}

// SecurityHeaders sets the browser hardening headers on every response
func SecurityHeaders() gin.HandlerFunc {
	api := secure.New(secureConfig(contentSecurityPolicy))
	docs := secure.New(secureConfig(""))

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Origin-Agent-Cluster", "?1")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("X-XSS-Protection", "0")

		if strings.HasPrefix(c.Request.URL.Path, docsPrefix) {
			docs(c)
			return
		}
		api(c)
	}
}

// Compression gzips responses for clients that accept it
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression)
}
