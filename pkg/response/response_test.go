package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAttachment_EncodesFilename(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Attachment(c, "application/octet-stream", "unassigned_BSCS-1A_1st Semester.xlsx", []byte("x"))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	want := "attachment; filename*=UTF-8''unassigned_BSCS-1A_1st%20Semester.xlsx"
	if got := w.Header().Get("Content-Disposition"); got != want {
		t.Errorf("Content-Disposition 不正确: %s", got)
	}
}

func TestErrorWithDetails_CarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(requestIDKey, "rid-1")

	ErrorWithDetails(c, http.StatusBadRequest, 21001, "参数错误", "semester 不能为空")

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if w.Code != http.StatusBadRequest || body.Code != 21001 || body.Details == "" {
		t.Errorf("错误响应不符合预期: %d %+v", w.Code, body)
	}
	if body.RequestID != "rid-1" {
		t.Errorf("期望 request_id=rid-1，实际 %q", body.RequestID)
	}
}

func TestShortcuts_Status(t *testing.T) {
	tests := []struct {
		name   string
		write  func(c *gin.Context)
		status int
		code   int
	}{
		{"Conflict", func(c *gin.Context) { Conflict(c, 22001, "stale", "") }, http.StatusConflict, 22001},
		{"Unprocessable", func(c *gin.Context) { Unprocessable(c, 21005, "rejected") }, http.StatusUnprocessableEntity, 21005},
		{"ServiceUnavailable", func(c *gin.Context) { ServiceUnavailable(c, 22002, "load fail", "") }, http.StatusServiceUnavailable, 22002},
		{"InternalError", InternalError, http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.write(c)

			var body Response
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if w.Code != tt.status || body.Code != tt.code {
				t.Errorf("expected %d/%d, got %d/%d", tt.status, tt.code, w.Code, body.Code)
			}
		})
	}
}

func TestOK_OmitsRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(requestIDKey, "rid-1")

	OK(c, gin.H{"seq": 1})

	var raw map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &raw)
	if _, ok := raw["request_id"]; ok {
		t.Error("成功响应不应携带 request_id")
	}
}
