package api

import (
	"github.com/gin-gonic/gin"

	"github.com/freightdesk/fuelmatch"
	"github.com/freightdesk/fuelmatch/api/middleware"
	"github.com/freightdesk/fuelmatch/config"
)

type Api struct {
	fuelmatch *fuelmatch.Fuelmatch
	router    *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/uploads/transactions", a.UploadTransactions)
	router.POST("/uploads/fuel-logs", a.UploadFuelLogs)

	router.POST("/drivers", a.CreateDriver)
	router.GET("/drivers/:id", a.GetDriver)
	router.GET("/drivers", a.GetAllDrivers)
	router.DELETE("/drivers/:id", a.DeactivateDriver)

	router.POST("/drivers/:id/matches", a.RunMatching)
	router.GET("/drivers/:id/matches", a.GetActiveMatches)
	router.GET("/drivers/:id/matches/statistics", a.GetMatchStatistics)

	router.GET("/transactions/:id", a.GetTransaction)
	router.GET("/fuel-logs/:id", a.GetFuelLog)
	router.PUT("/fuel-logs/:id", a.UpdateFuelLog)

	return a.router
}

func NewAPI(f *fuelmatch.Fuelmatch) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{fuelmatch: f, router: r}
}
