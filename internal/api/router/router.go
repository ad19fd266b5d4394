package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"vidshare/internal/api/handler"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/model"

	"github.com/gin-gonic/gin"
)

// Setup 注册所有业务路由。authLimiter 为 nil 时不限流。
func Setup(
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	videoHandler *handler.VideoHandler,
	commentHandler *handler.CommentHandler,
	authMiddleware gin.HandlerFunc,
	adminMiddleware gin.HandlerFunc,
	authLimiter gin.HandlerFunc,
) {
	api := r.Group("/api")

	// --- 认证模块 ---
	auth := api.Group("/auth")
	{
		public := auth.Group("")
		if authLimiter != nil {
			public.Use(authLimiter)
		}
		public.POST("/signup", authHandler.Signup)
		public.POST("/login", authHandler.Login)

		authRequired := auth.Group("", authMiddleware)
		{
			authRequired.GET("/profile", authHandler.Profile)
			authRequired.PUT("/update", authHandler.UpdateProfile)
		}
	}

	// --- 视频模块 ---
	videos := api.Group("/videos")
	{
		// 公开接口（不需要登录）
		videos.GET("", videoHandler.List)
		videos.GET("/", videoHandler.List)
		videos.GET("/get", videoHandler.Get)
		videos.GET("/search", videoHandler.Search)
		videos.GET("/metadata/*blob", videoHandler.Metadata)

		videos.POST("/upload", authMiddleware, adminMiddleware, videoHandler.Upload)
	}

	// --- 评论模块 ---
	comments := api.Group("/comments", authMiddleware)
	{
		comments.POST("/add", commentHandler.Add)
	}
}

// SetupFallback 未匹配路由：API 路径返回 404 JSON；配置了 staticDir 时其余 GET 请求由前端页面处理
func SetupFallback(r *gin.Engine, staticDir string) {
	var spa http.Handler
	if staticDir != "" {
		spa = spaHandler(staticDir)
	}

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		isAPI := path == "/api" || strings.HasPrefix(path, "/api/")
		if spa != nil && !isAPI && (c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			spa.ServeHTTP(c.Writer, c.Request)
			return
		}
		response.NotFound(c, "Route not found")
	})
}

// spaHandler 存在的静态文件直接返回，其余路径返回 index.html 交给前端路由
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := filepath.Clean("/" + r.URL.Path)
		if clean != "/" {
			if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean))); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFile(w, r, index)
	})
}

// AdminMiddleware 管理员校验，refresh 为 true 时每次请求从数据库读取角色
func AdminMiddleware(fetcher middleware.UserRoleFetcher, refresh bool) gin.HandlerFunc {
	if !refresh {
		fetcher = nil
	}
	return middleware.RoleRequired(model.RoleAdmin, fetcher)
}
