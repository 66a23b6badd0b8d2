package controller

import (
	"net/http"
	"strconv"

	"quest_reward_backend/internal/service"
	"quest_reward_backend/internal/util"
	"quest_reward_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RewardController struct {
	RewardService *service.RewardService
}

func NewRewardController(rewardService *service.RewardService) *RewardController {
	return &RewardController{RewardService: rewardService}
}

// AwardResponse is the body of a reward claim, successful or not.
type AwardResponse struct {
	Success        bool           `json:"success"`
	XPAwarded      *int           `json:"xp_awarded,omitempty"`
	CoinsAwarded   *int           `json:"coins_awarded,omitempty"`
	NewXPTotal     *int           `json:"new_xp_total,omitempty"`
	NewCoinsTotal  *int           `json:"new_coins_total,omitempty"`
	AlreadyClaimed bool           `json:"already_claimed,omitempty"`
	Error          util.ErrorCode `json:"error,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// @Summary 领取奖励
// @Description 校验练习、游戏、学习目标、作业或挑战的完成情况后发放经验和金币，重复领取返回首次结果
// @Tags 奖励
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ClaimRequest true "领取请求"
// @Success 200 {object} AwardResponse
// @Failure 400 {object} AwardResponse
// @Failure 403 {object} AwardResponse
// @Failure 404 {object} AwardResponse
// @Router /api/rewards/claim [post]
func (c *RewardController) Claim(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, AwardResponse{Error: util.CodeValidation, Message: err.Error()})
		return
	}
	req.StudentID = user.UserID

	res, err := c.RewardService.Claim(ctx.Request.Context(), req)
	if err != nil {
		code := util.CodeOf(err)
		if code == util.CodeInternal {
			logger.Log.Error("Reward claim failed", zap.Uint("student_id", user.UserID), zap.Error(err))
		}
		ctx.JSON(util.HTTPStatus(code), AwardResponse{Error: code, Message: util.MessageOf(err)})
		return
	}

	resp := AwardResponse{
		Success:        true,
		XPAwarded:      &res.XPAwarded,
		CoinsAwarded:   &res.CoinsAwarded,
		NewXPTotal:     &res.NewXPTotal,
		NewCoinsTotal:  &res.NewCoinsTotal,
		AlreadyClaimed: res.AlreadyClaimed,
	}
	// 重复领取是成功响应，只标记 already_claimed
	if res.AlreadyClaimed {
		resp.Message = "reward already claimed"
	}
	ctx.JSON(http.StatusOK, resp)
}

// @Summary 获取当前学生的经验与金币余额
// @Tags 奖励
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.StudentBalance}
// @Router /api/rewards/balance [get]
func (c *RewardController) Balance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	balance, err := c.RewardService.Balance(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, balance)
}

// @Summary 经验排行榜
// @Description 启用 Redis 时读取有序集合，否则直接查询数据库
// @Tags 奖励
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回条数（默认10，最大100）"
// @Success 200 {object} util.Response{data=[]repository.LeaderboardEntry}
// @Router /api/rewards/leaderboard [get]
func (c *RewardController) Leaderboard(ctx *gin.Context) {
	limit := 0
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			util.BadRequest(ctx, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := c.RewardService.Leaderboard(ctx.Request.Context(), limit)
	if err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// @Summary 重建排行榜缓存
// @Description 从余额表重新生成 Redis 排行榜（管理员权限）
// @Tags 奖励
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/leaderboard/rebuild [post]
func (c *RewardController) RebuildLeaderboard(ctx *gin.Context) {
	if err := c.RewardService.RebuildLeaderboard(ctx.Request.Context()); err != nil {
		util.Fail(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rebuilt": true})
}
