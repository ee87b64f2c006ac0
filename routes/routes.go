package routes

import (
	"MedShare/controllers"
	"MedShare/metrics"
	"MedShare/middleware"
	"MedShare/services"

	"github.com/gin-gonic/gin"
)

type Services struct {
	Manufacturers *services.ManufacturerService
	Medicines     *services.MedicineService
	Requests      *services.RequestService
	Search        *services.DrugSearchService
	JWTSecret     string
}

func Routes(r *gin.Engine, s Services) {
	r.Use(metrics.Middleware())

	//public
	r.GET("/healthz", func(ctx *gin.Context) { ctx.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", metrics.Handler())

	//reads are public, writes go through auth
	auth := middleware.Authenticate(s.JWTSecret)
	controllers.Manufacturers(r, auth, s.Manufacturers)
	controllers.Medicines(r, auth, s.Medicines, s.Requests, s.Search)
	controllers.Requests(r, auth, s.Requests)
}
