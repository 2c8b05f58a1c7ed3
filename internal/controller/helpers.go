package controller

import (
	"lingocode_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUserID 未登录时直接写入 401 响应
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}

// lessonParams 解析 :moduleId/:lessonId，非法时写入 400 响应
func lessonParams(ctx *gin.Context) (int, int, bool) {
	moduleID, ok := util.ParseID(ctx.Param("moduleId"))
	if !ok {
		util.BadRequest(ctx, "invalid module id")
		return 0, 0, false
	}
	lessonID, ok := util.ParseID(ctx.Param("lessonId"))
	if !ok {
		util.BadRequest(ctx, "invalid lesson id")
		return 0, 0, false
	}
	return moduleID, lessonID, true
}

func userIDParam(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "invalid user id")
		return 0, false
	}
	return uint(id), true
}
