package api

import "github.com/gin-gonic/gin"

// SetupRouter 配置和返回一个 Gin 引擎实例。middlewares 作用于所有路由。
func SetupRouter(h *Handler, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares...)
	r.MaxMultipartMemory = 8 << 20

	r.GET("/healthz", h.Healthz)

	authMiddleware := AuthMiddleware(h.service)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", authMiddleware, h.Logout)
		}

		protected := apiV1.Group("")
		protected.Use(authMiddleware)
		{
			protected.GET("/me", h.Me)

			protected.POST("/activities", h.CreateActivity)
			protected.GET("/activities", h.ListActivities)

			protected.GET("/sustainability", h.Sustainability)
			protected.GET("/sustainability/chart", h.Chart)
			protected.POST("/simulate", h.Simulate)

			protected.POST("/observations", h.SubmitObservation)
			protected.GET("/observations", h.ListObservations)
			protected.GET("/observations/map", h.ObservationMap)
		}
	}

	return r
}
