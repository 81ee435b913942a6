package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/narasux/vidvote/pkg/storage"
	"github.com/narasux/vidvote/pkg/utils/ginx"
	"github.com/narasux/vidvote/pkg/vote"
)

type castVoteReq struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type castVoteResp struct {
	OK bool `json:"ok"`
	vote.Status
}

// GetVote 查询条目计票与请求方自己的投票
func GetVote(c *gin.Context) {
	itemID := c.Query("id")
	if itemID == "" {
		ginx.SetErrResp(c, http.StatusBadRequest, "missing id")
		return
	}

	status, err := storage.VoteService().GetStatus(c.Request.Context(), ginx.GetClientID(c), itemID)
	if err != nil {
		setVoteErrResp(c, err)
		return
	}
	ginx.SetResp(c, http.StatusOK, status)
}

// CastVote 投票，重复提交相同选项为撤销，提交不同选项为切换
func CastVote(c *gin.Context) {
	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.SetErrResp(c, http.StatusBadRequest, vote.ErrInvalidArgument.Error())
		ginx.SetError(c, err)
		return
	}

	status, err := storage.VoteService().CastOrChange(c.Request.Context(), ginx.GetClientID(c), req.ID, req.Type)
	if err != nil {
		setVoteErrResp(c, err)
		return
	}
	ginx.SetResp(c, http.StatusOK, castVoteResp{OK: true, Status: status})
}
