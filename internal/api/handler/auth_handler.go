package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/unmask/pkg/response"
)

type signupStartRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignupStart 注册第一步：邮箱+密码，下发草稿 token 并发送验证码
// @Summary 注册（第一步）
// @Tags 账号
// @Param request body signupStartRequest true "邮箱与密码"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/signup/start [post]
func (h *Handler) SignupStart(c *gin.Context) {
	var req signupStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	token, err := h.auth.StartSignup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"draft_token": token})
}

type signupProfileRequest struct {
	DraftToken string `json:"draft_token" binding:"required"`
	Username   string `json:"username" binding:"required,min=3,max=32"`
}

// SignupProfile 注册第二步：用户名
// @Summary 注册（第二步）
// @Tags 账号
// @Param request body signupProfileRequest true "草稿 token 与用户名"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/signup/profile [post]
func (h *Handler) SignupProfile(c *gin.Context) {
	var req signupProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	if err := h.auth.SetProfile(c.Request.Context(), req.DraftToken, req.Username); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

type signupVerifyRequest struct {
	DraftToken string `json:"draft_token" binding:"required"`
	Code       string `json:"code" binding:"required,len=6"`
}

// SignupVerify 注册第三步：校验邮箱验证码并落库
// @Summary 注册（第三步）
// @Tags 账号
// @Param request body signupVerifyRequest true "草稿 token 与验证码"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/signup/verify [post]
func (h *Handler) SignupVerify(c *gin.Context) {
	var req signupVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	token, err := h.auth.Verify(c.Request.Context(), req.DraftToken, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"access_token": token})
}

type signinRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn 登录
// @Summary 登录
// @Tags 账号
// @Param request body signinRequest true "邮箱与密码"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/signin [post]
func (h *Handler) SignIn(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid fields")
		return
	}
	token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"access_token": token})
}
