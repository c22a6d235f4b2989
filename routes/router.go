package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cleanblog/config"
	"cleanblog/controllers"
	"cleanblog/middleware"
	"cleanblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg *config.AppConfig, mailer utils.Mailer) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Request/recovery logging through a dedicated rolling file so access
	// noise stays out of the application log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.LoadHTMLGlob("templates/*.html")
	r.Static("/static/css", "./static/css")
	// Thumbnails keep a fixed public URL while the storage dir follows config.
	r.Static("/static/uploads/thumbnails", cfg.ThumbDir)

	r.GET("/health", func(ctx *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			utils.Error(ctx, http.StatusServiceUnavailable, 1, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	blogController := controllers.NewBlogController(db, cfg, mailer)
	adminController := controllers.NewAdminController(db, cfg, middleware.NewCredentialAuthenticator(cfg))

	r.GET("/", blogController.Index)
	r.GET("/about", blogController.About)

	contact := r.Group("/contact", middleware.RateLimit(cfg))
	contact.GET("", blogController.Contact)
	contact.POST("", blogController.Contact)

	r.GET("/posts/:post_slug", blogController.ShowPost)

	r.GET("/admin-login", adminController.Login)
	r.POST("/admin-login", middleware.RateLimit(cfg), adminController.Login)

	admin := r.Group("/admin-panel", middleware.AdminRequired(cfg))
	admin.GET("", adminController.Panel)
	admin.GET("/posts/add-edit/:s_no", adminController.EditPost)
	admin.POST("/posts/add-edit/:s_no", adminController.EditPost)
	admin.GET("/posts/delete/:s_no", adminController.DeletePost)
	admin.POST("/posts/delete/:s_no", adminController.DeletePost)
	admin.GET("/logout", adminController.Logout)

	return r
}
