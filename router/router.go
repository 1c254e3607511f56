package router

import (
	"payslip-agent-backend/controller"
	"payslip-agent-backend/middleware"

	"github.com/gin-gonic/gin"
)

func Register() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		public := api.Group("/user")
		{
			public.POST("/register", controller.UserRegister)
			public.POST("/login", controller.UserLogin)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/payslip/extract", controller.ExtractPayslip)
			protected.POST("/payslip", controller.CreatePayslip)
			protected.GET("/payslips", controller.GetPayslips)
			protected.GET("/payslip/:id", controller.GetPayslipDetail)
			protected.GET("/payslip/:id/image-link", controller.GetPayslipImageLink)

			protected.GET("/oss/policy-token", controller.GetPolicyToken)

			protected.POST("/session", controller.CreateSession)
			protected.GET("/sessions", controller.GetSessions)
			protected.DELETE("/session/:id", controller.DeleteSession)
			protected.GET("/session/:id/messages", controller.GetSessionMessages)
			protected.PUT("/session/:id/title", controller.UpdateSessionTitle)

			protected.POST("/chat", controller.AgentChat)
		}
	}

	return r
}
