package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/model"
	"github.com/narasux/vidvote/pkg/storage"
	"github.com/narasux/vidvote/pkg/utils/ginx"
	"github.com/narasux/vidvote/pkg/vote"
)

type blacklistResp struct {
	Count  int               `json:"count"`
	Videos []model.ItemTally `json:"videos"`
}

// ListBlacklist 踩数不小于 min 的条目，按踩数倒序
func ListBlacklist(c *gin.Context) {
	_, tallies, ok := listBlacklisted(c)
	if !ok {
		return
	}
	ginx.SetResp(c, http.StatusOK, blacklistResp{Count: len(tallies), Videos: tallies})
}

// BlacklistFeed 黑名单的 Atom 订阅
func BlacklistFeed(c *gin.Context) {
	minDislikes, tallies, ok := listBlacklisted(c)
	if !ok {
		return
	}

	now := time.Now()
	feed := &feeds.Feed{
		Title:       "vidvote blacklist",
		Link:        &feeds.Link{Href: absURL(c, "/api/blacklist")},
		Description: fmt.Sprintf("videos with at least %d dislikes", minDislikes),
		Updated:     now,
	}
	for _, tally := range tallies {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          tally.ID,
			Title:       tally.ID,
			Link:        &feeds.Link{Href: absURL(c, "/api/vote?id="+url.QueryEscape(tally.ID))},
			Description: fmt.Sprintf("%d likes, %d dislikes", tally.Likes, tally.Dislikes),
			Updated:     now,
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		ginx.SetErrResp(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

func listBlacklisted(c *gin.Context) (int, []model.ItemTally, bool) {
	minDislikes, err := ginx.GetIntFromQuery(c, "min", envs.BlacklistDefaultMin)
	if err != nil {
		ginx.SetErrResp(c, http.StatusBadRequest, vote.ErrInvalidArgument.Error())
		ginx.SetError(c, err)
		return 0, nil, false
	}

	tallies, err := storage.VoteService().ListBlacklisted(c.Request.Context(), minDislikes)
	if err != nil {
		setVoteErrResp(c, err)
		return 0, nil, false
	}
	return max(minDislikes, 0), tallies, true
}

func absURL(c *gin.Context, path string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, path)
}
