package controllers

import (
	"MedShare/middleware"
	"MedShare/models"
	"MedShare/services"

	"github.com/gin-gonic/gin"
)

type medicineController struct {
	medicines *services.MedicineService
	requests  *services.RequestService
	search    *services.DrugSearchService
}

type donateBody struct {
	DonatedTo string `json:"donatedTo"`
}

type statusBody struct {
	Status string `json:"status"`
}

// Medicines registers the medicine routes and the open request board that
// lives under them.
func Medicines(router *gin.Engine, auth gin.HandlerFunc, medicines *services.MedicineService, requests *services.RequestService, search *services.DrugSearchService) {
	c := medicineController{medicines: medicines, requests: requests, search: search}
	group := router.Group("/medicines")
	{
		group.GET("", c.List)
		group.GET("/search", c.Search)
		group.GET("/:id", c.Get)
		group.POST("", auth, c.Create)
		group.PATCH("/:id", auth, c.Update)
		group.DELETE("/:id", auth, c.Delete)
		group.POST("/:id/donate", auth, c.Donate)
		group.PATCH("/:id/status", auth, c.SetStatus)

		group.POST("/request", auth, c.CreateRequest)
		group.GET("/requests/all", auth, c.AllRequests)
		group.GET("/requests/my", auth, c.MyRequests)
		group.POST("/requests/:id/fulfill", auth, c.Fulfill)
		group.POST("/requests/:id/cancel", auth, c.Cancel)
	}
}

func (c medicineController) List(ctx *gin.Context) {
	medicines, err := c.medicines.List(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, medicines)
}

func (c medicineController) Search(ctx *gin.Context) {
	payload, err := c.search.Search(ctx.Request.Context(), ctx.Query("query"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, payload)
}

func (c medicineController) Get(ctx *gin.Context) {
	medicine, err := c.medicines.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, medicine)
}

func (c medicineController) Create(ctx *gin.Context) {
	var in services.CreateMedicineInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	medicine, err := c.medicines.Create(ctx.Request.Context(), middleware.ActorFrom(ctx), in)
	if err != nil {
		failed(ctx, err)
		return
	}
	created(ctx, medicine)
}

func (c medicineController) Update(ctx *gin.Context) {
	var in services.UpdateMedicineInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	medicine, err := c.medicines.Update(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"), in)
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, medicine)
}

func (c medicineController) Delete(ctx *gin.Context) {
	if err := c.medicines.Delete(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id")); err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, "Medicine deleted")
}

func (c medicineController) Donate(ctx *gin.Context) {
	var body donateBody
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			badBody(ctx, err)
			return
		}
	}
	medicine, err := c.medicines.Donate(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"), body.DonatedTo)
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, medicine)
}

func (c medicineController) SetStatus(ctx *gin.Context) {
	var body statusBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		badBody(ctx, err)
		return
	}
	medicine, err := c.medicines.SetStatus(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"), body.Status)
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, medicine)
}

func (c medicineController) CreateRequest(ctx *gin.Context) {
	var in services.CreateRequestInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badBody(ctx, err)
		return
	}
	request, err := c.requests.Create(ctx.Request.Context(), middleware.ActorFrom(ctx), models.FlowOpen, in)
	if err != nil {
		failed(ctx, err)
		return
	}
	created(ctx, request)
}

func (c medicineController) AllRequests(ctx *gin.Context) {
	c.listRequests(ctx, false)
}

func (c medicineController) MyRequests(ctx *gin.Context) {
	c.listRequests(ctx, true)
}

func (c medicineController) listRequests(ctx *gin.Context, mine bool) {
	requests, err := c.requests.List(ctx.Request.Context(), middleware.ActorFrom(ctx), services.RequestQuery{
		Flow:   models.FlowOpen,
		Status: ctx.Query("status"),
		Mine:   mine,
	})
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, requests)
}

func (c medicineController) Fulfill(ctx *gin.Context) {
	request, err := c.requests.Fulfill(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, request)
}

func (c medicineController) Cancel(ctx *gin.Context) {
	request, err := c.requests.Cancel(ctx.Request.Context(), middleware.ActorFrom(ctx), ctx.Param("id"))
	if err != nil {
		failed(ctx, err)
		return
	}
	ok(ctx, request)
}
