package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademkt/image-audit/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, apiKey string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint, outside the API key gate so probes stay simple
	r.GET("/health", func(c *gin.Context) {
		if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "image-audit-api",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "image-audit-api",
		})
	})

	processamentoHandler := handler.NewProcessamentoHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(APIKeyMiddleware(apiKey))
	{
		analiseFotos := v1.Group("/analise-fotos")
		{
			// POST /api/v1/analise-fotos/auditar-pdv - Enqueue a point-of-sale audit
			analiseFotos.POST("/auditar-pdv", processamentoHandler.AuditarPDV)

			// GET /api/v1/analise-fotos/auditorias/:id - Fetch an audit result
			analiseFotos.GET("/auditorias/:id", processamentoHandler.GetAuditoria)
		}

		plantas := v1.Group("/plantas")
		{
			// POST /api/v1/plantas/processar - Enqueue a floor-plan mapping
			plantas.POST("/processar", processamentoHandler.ProcessarPlanta)

			// GET /api/v1/plantas/processamentos/:id - Fetch a mapping result
			plantas.GET("/processamentos/:id", processamentoHandler.GetPlanta)
		}

		processamentos := v1.Group("/processamentos")
		{
			// GET /api/v1/processamentos - List jobs with filtering
			processamentos.GET("", processamentoHandler.ListProcessamentos)

			// GET /api/v1/processamentos/:id - Get job details
			processamentos.GET("/:id", processamentoHandler.GetProcessamento)
		}
	}

	return r
}
