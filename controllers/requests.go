package controllers

import (
	"MedShare/middleware"
	"MedShare/models"
	"MedShare/services"

	"github.com/gin-gonic/gin"
)

type requestController struct {
	svc *services.RequestService
}

// Requests registers the direct request routes. All of them need a caller.
func Requests(router *gin.Engine, auth gin.HandlerFunc, svc *services.RequestService) {
	c := requestController{svc: svc}
	requests := router.Group("/requests", auth)
	{
		requests.GET("", c.List)
		requests.POST("", c.Create)
		requests.GET("/:id", c.Get)
		requests.PATCH("/:id/status", c.UpdateStatus)
		requests.POST("/:id/cancel", c.Cancel)
	}
}

func (c requestController) List(ctx *gin.Context) {
	requests, err := c.svc.List(ctx.Request.Context(), middleware.ActorFrom(ctx), services.RequestQuery{
		Flow:   models.FlowDirect,
		Status: ctx.Query("status"),
		Mine:   ctx.Query("mine") == "true",
	})
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, requests)
}

func (c requestController) Create(ctx *gin.Context) {
	var in services.CreateRequestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	request, err := c.svc.Create(ctx.Request.Context(), middleware.ActorFrom(ctx), models.FlowDirect, in)
	if err != nil {
		failed(ctx, err)
		return
	}
	created(ctx, request)
}

func (c requestController) Get(ctx *gin.Context) {
	request, err := c.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, request)
}

func (c requestController) UpdateStatus(ctx *gin.Context) {
	var body statusBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badBody(ctx, err)
		return
	}
	request, err := c.svc.UpdateStatus(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"), body.Status)
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, request)
}

func (c requestController) Cancel(ctx *gin.Context) {
	request, err := c.svc.Cancel(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, request)
}
