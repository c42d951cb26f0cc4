package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// MustGetUserID 取 JWT 中间件注入的 user_id，作为写操作的审计操作人
// 缺失时写入 401 响应并返回 false，调用方应直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	if uid := c.GetString("user_id"); uid != "" {
		return uid, true
	}
	response.Unauthorized(c, 10002, "未认证")
	return "", false
}
