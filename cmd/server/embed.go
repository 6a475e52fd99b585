//go:build embed
// +build embed

package main

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the embedded single-page front-end
func setupStaticFiles(router *gin.Engine, log *zap.Logger) {
	log.Info("📦 Using embedded frontend assets")

	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		log.Fatal("Failed to get dist subdirectory", zap.Error(err))
	}
	fileServer := http.FileServer(http.FS(distFS))

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api") || urlPath == "/predict" {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}

		// Unknown paths fall back to index.html for client-side routing
		name := strings.TrimPrefix(path.Clean(urlPath), "/")
		if name == "" {
			name = "index.html"
		}
		if stat, err := fs.Stat(distFS, name); err != nil || stat.IsDir() {
			c.FileFromFS("/", http.FS(distFS))
			return
		}
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
}
