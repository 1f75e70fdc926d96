package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-recipe-api/internal/core/auth"
	"go-recipe-api/internal/domain"
	"go-recipe-api/internal/repo"
	mdw "go-recipe-api/internal/transport/http/middleware"
	resp "go-recipe-api/internal/transport/http/response"
	"go-recipe-api/pkg/utils"
)

type UserHandler struct {
	log   *zap.Logger
	users *repo.UserRepo
	jwter *auth.JWTer
}

func NewUserHandler(l *zap.Logger, users *repo.UserRepo, jwter *auth.JWTer) *UserHandler {
	return &UserHandler{log: l, users: users, jwter: jwter}
}

// Mount public: /create/ /token/；authed: /me/
func (h *UserHandler) Mount(public, authed *gin.RouterGroup) {
	public.POST("/create/", h.create)
	public.POST("/token/", h.token)
	authed.GET("/me/", h.me)
	authed.PATCH("/me/", h.updateMe)
}

type registerIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=5"`
	Name     string `json:"name" binding:"omitempty,max=255"`
}

type userOut struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *UserHandler) create(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	u := domain.User{
		Email:        utils.NormalizeEmail(in.Email),
		Name:         in.Name,
		PasswordHash: utils.HashPassword(in.Password),
		IsActive:     true,
	}
	if err := h.users.Create(&u); err != nil {
		if repo.IsDupKey(err) {
			resp.Fields(c, http.StatusBadRequest, map[string]string{
				"email": "user with this email already exists",
			})
			return
		}
		h.log.Error("create user", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusCreated, userOut{ID: u.ID, Email: u.Email, Name: u.Name})
}

type tokenIn struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// token 凭证换 bearer token；任何不匹配一律同一条 400，不泄露是哪个字段错了
func (h *UserHandler) token(c *gin.Context) {
	const failMsg = "unable to authenticate with provided credentials"

	var in tokenIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Detail(c, http.StatusBadRequest, failMsg)
		return
	}
	u, err := h.users.FindByEmail(utils.NormalizeEmail(in.Email))
	if err != nil {
		h.log.Error("token lookup", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if u == nil || !u.IsActive || in.Password == "" || !utils.CheckPassword(in.Password, u.PasswordHash) {
		resp.Detail(c, http.StatusBadRequest, failMsg)
		return
	}
	tok, err := h.jwter.Issue(u.ID)
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

type meOut struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *UserHandler) me(c *gin.Context) {
	u, err := h.users.FindByID(mdw.UserID(c))
	if err != nil || u == nil {
		resp.Detail(c, http.StatusUnauthorized, "invalid token")
		return
	}
	c.JSON(http.StatusOK, meOut{Email: u.Email, Name: u.Name})
}

type meIn struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5"`
}

func (h *UserHandler) updateMe(c *gin.Context) {
	u, err := h.users.FindByID(mdw.UserID(c))
	if err != nil || u == nil {
		resp.Detail(c, http.StatusUnauthorized, "invalid token")
		return
	}
	var in meIn
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fields(c, bindStatus(err), bindFieldErrors(err))
		return
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Password != nil {
		u.PasswordHash = utils.HashPassword(*in.Password)
	}
	if err := h.users.Update(u); err != nil {
		h.log.Error("update user", zap.Error(err))
		resp.Detail(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, meOut{Email: u.Email, Name: u.Name})
}
