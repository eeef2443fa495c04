package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/corvidian/backend/internal/config"
	"github.com/corvidian/backend/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("corvidian_session", store))

	// 媒体文件服务
	r.Static(cfg.MediaURLPath, cfg.MediaRoot)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// 公开 API
	public := r.Group("/api")
	{
		public.GET("/articles", api.ListArticles)
		public.GET("/articles/slug/:slug", api.GetArticleBySlug)
		public.POST("/consultation/submit", api.SubmitConsultation)
		public.POST("/subscribe", api.Subscribe)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		// 需要认证的后台 API
		auth := admin.Group("/api")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/articles", api.ListArticlesAdmin)
			auth.POST("/articles", api.CreateArticle)
			auth.GET("/articles/:id", api.GetArticle)
			auth.PUT("/articles/:id", api.UpdateArticle)
			auth.DELETE("/articles/:id", api.DeleteArticle)

			auth.GET("/consultations", api.ListConsultations)
			auth.GET("/subscribers", api.ListSubscribers)

			auth.GET("/welcome-messages", api.ListWelcomeMessages)
			auth.POST("/welcome-messages", api.CreateWelcomeMessage)
			auth.GET("/welcome-messages/:id", api.GetWelcomeMessage)
			auth.PUT("/welcome-messages/:id", api.UpdateWelcomeMessage)
			auth.DELETE("/welcome-messages/:id", api.DeleteWelcomeMessage)
			auth.POST("/welcome-messages/:id/test-send", api.TestSendWelcomeMessage)

			auth.GET("/campaigns", api.ListCampaigns)
			auth.POST("/campaigns", api.CreateCampaign)
			auth.GET("/campaigns/:id", api.GetCampaign)
			auth.PUT("/campaigns/:id", api.UpdateCampaign)
			auth.DELETE("/campaigns/:id", api.DeleteCampaign)
			auth.POST("/campaigns/:id/send", api.SendCampaign)
			auth.POST("/campaigns/:id/test-send", api.TestSendCampaign)

			auth.POST("/uploads", api.UploadImage)
		}
	}

	return r
}
