package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/corvidian/backend/internal/db"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 处理管理员登录请求。
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	// 查找用户
	var user db.User
	if err := a.db.Where("username = ?", payload.Username).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	// 设置会话
	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout 处理管理员登出。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// AuthRequired 是一个简单的认证中间件。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
