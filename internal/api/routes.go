package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Root)
	router.GET("/health", handler.HealthCheck)

	router.POST("/register", handler.Register)

	api := router.Group("/api")
	{
		api.POST("/upload", handler.UploadStudents)
		api.GET("/students", handler.ListStudents)

		api.POST("/upload-bus", handler.UploadBuses)
		api.GET("/upload-bus", handler.ListBuses)

		api.POST("/upload-stops", handler.UploadStops)
	}
}
