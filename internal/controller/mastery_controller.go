package controller

import (
	"quest_reward_backend/internal/service"
	"quest_reward_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	MasteryService *service.MasteryService
}

func NewMasteryController(masteryService *service.MasteryService) *MasteryController {
	return &MasteryController{MasteryService: masteryService}
}

// @Summary 获取某个考试类别的掌握度
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Param category path string true "考试类别"
// @Success 200 {object} util.Response{data=model.MasteryRecord}
// @Failure 404 {object} util.Response
// @Router /api/mastery/{category} [get]
func (c *MasteryController) GetMastery(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	record, err := c.MasteryService.Get(ctx.Request.Context(), user.UserID, ctx.Param("category"))
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, record)
}
