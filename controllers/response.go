package controllers

import (
	"MedShare/apperr"

	util "github.com/KanapuramVaishnavi/Core/util"
	"github.com/gin-gonic/gin"
)

// failed renders err in the failure envelope with the status of its kind.
func failed(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), util.FailedResponse(err))
}

func badBody(ctx *gin.Context, err error) {
	failed(ctx, apperr.Validation(apperr.INVALID_INPUT, map[string]string{"body": err.Error()}))
}

func ok(ctx *gin.Context, data interface{}) {
	ctx.JSON(200, util.SuccessResponse(data))
}

func created(ctx *gin.Context, data interface{}) {
	ctx.JSON(201, util.SuccessResponse(data))
}
