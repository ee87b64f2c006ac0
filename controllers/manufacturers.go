package controllers

import (
	"MedShare/middleware"
	"MedShare/services"

	"github.com/gin-gonic/gin"
)

type manufacturerController struct {
	svc *services.ManufacturerService
}

func Manufacturers(router *gin.Engine, auth gin.HandlerFunc, svc *services.ManufacturerService) {
	c := manufacturerController{svc: svc}
	manufacturers := router.Group("/manufacturers")
	{
		manufacturers.GET("", c.List)
		manufacturers.GET("/:id", c.Get)
		manufacturers.POST("", auth, c.Create)
		manufacturers.PATCH("/:id", auth, c.Update)
		manufacturers.PATCH("/:id/verify", auth, c.Verify)
		manufacturers.DELETE("/:id", auth, c.Delete)
	}
}

func (c manufacturerController) List(ctx *gin.Context) {
	manufacturers, err := c.svc.List(ctx.Request.Context())
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, manufacturers)
}

func (c manufacturerController) Get(ctx *gin.Context) {
	manufacturer, err := c.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, manufacturer)
}

func (c manufacturerController) Create(ctx *gin.Context) {
	var in services.CreateManufacturerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	manufacturer, err := c.svc.Create(ctx.Request.Context(), middleware.ActorFrom(ctx), in)
	if err != nil {
		failed(ctx, err)
		return
	}
	created(ctx, manufacturer)
}

func (c manufacturerController) Update(ctx *gin.Context) {
	var in services.UpdateManufacturerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	manufacturer, err := c.svc.Update(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"), in)
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, manufacturer)
}

func (c manufacturerController) Verify(ctx *gin.Context) {
	manufacturer, err := c.svc.Verify(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, manufacturer)
}

func (c manufacturerController) Delete(ctx *gin.Context) {
	if err := c.svc.Delete(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id")); err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, "Manufacturer deleted")
}
