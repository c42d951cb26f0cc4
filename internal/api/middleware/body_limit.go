package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/response"
)

// BodyLimit 请求体大小限制中间件（xlsx / ICS 上传与 JSON 原始记录共用）
// 声明的 Content-Length 超限时直接返回 413；
// 未声明长度的请求由 MaxBytesReader 在读取时截断，handler 读取失败按参数错误处理
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
