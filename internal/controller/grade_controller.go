package controller

import (
	"quest_reward_backend/internal/service"
	"quest_reward_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	GradingService *service.GradingService
}

func NewGradeController(gradingService *service.GradingService) *GradeController {
	return &GradeController{GradingService: gradingService}
}

// @Summary 提交作答并自动评分
// @Description 按题型评分，达到及格线时发放经验和金币（同一次作答只发放一次）
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.GradeRequest true "作答与题目"
// @Success 200 {object} util.Response{data=grading.GradeResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/grading/grade [post]
func (c *GradeController) Grade(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GradingService.Grade(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, result)
}
