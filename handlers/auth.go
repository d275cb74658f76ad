package handlers

import (
	"net/http"

	"bitbucket.org/iberryms/repairshop_backend/middlewares"
	"bitbucket.org/iberryms/repairshop_backend/models"
	"bitbucket.org/iberryms/repairshop_backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type signInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn checks credentials against the user accounts table and issues a JWT.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}

	var account models.UserAccount
	err := h.DB.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&account).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := utils.ComparePassword(account.PasswordHash, req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	token, err := utils.JwtGenerate(account.ID, account.Username, string(account.Role))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       account.ID,
			"username": account.Username,
			"role":     account.Role,
			"avatar":   account.Avatar,
		},
	})
}

// SignOut is stateless: the session is a bearer token the client discards.
// The endpoint exists so the UI has one place to hit on logout.
func (h *Handler) SignOut(c *gin.Context) {
	claims := middlewares.CtxValue(c.Request.Context())
	if claims != nil {
		h.Logg.WithField("user_id", claims.ID).Info("user signed out")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Session returns the identity behind the current token.
func (h *Handler) Session(c *gin.Context) {
	claims := middlewares.CtxValue(c.Request.Context())
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       claims.ID,
		"username": claims.Username,
		"role":     claims.Role,
	})
}
