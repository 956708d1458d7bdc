package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dwisetyawan/account-service/internal/application"
	"github.com/dwisetyawan/account-service/internal/domain/entity"
	"github.com/dwisetyawan/account-service/pkg/response"
	"github.com/dwisetyawan/account-service/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.Service, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username        string     `json:"username" binding:"required,min=4"`
	Email           string     `json:"email" binding:"required,email"`
	Password        string     `json:"password" binding:"required"`
	ConfirmPassword string     `json:"confirm_password" binding:"required"`
	FirstName       string     `json:"first_name" binding:"omitempty,max=100"`
	LastName        string     `json:"last_name" binding:"omitempty,max=100"`
	PhoneNumber     string     `json:"phone_number" binding:"omitempty,phone"`
	BirthDate       *time.Time `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type changeUsernameRequest struct {
	Username string `json:"username" binding:"required,min=4"`
}

// accountResponse is the public view of an account. There is deliberately
// no field the password hash could travel through.
type accountResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	ImagePath   string     `json:"image_path,omitempty"`
	IsActive    bool       `json:"is_active"`
	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toAccountResponse(a *entity.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		PhoneNumber: a.PhoneNumber,
		BirthDate:   a.BirthDate,
		ImagePath:   a.ImagePath,
		IsActive:    a.IsActive,
		Created:     a.Created,
		Modified:    a.Modified,
		LastLogin:   a.LastLogin,
	}
}

// Register POST /api/users
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		BirthDate:       req.BirthDate,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toAccountResponse(a), "account registered")
}

// Login POST /api/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, ok, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !ok {
		// One message for unknown email and wrong password.
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "login successful")
}

// Get GET /api/users/:id
func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.Svc.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "account")
}

// List GET /api/users
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.Svc.ListAccounts(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	response.Success(c, http.StatusOK, out, "accounts")
}

// ChangePassword PUT /api/users/:id/password
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.Param("id"), req.NewPassword, req.ConfirmPassword); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed")
}

// ChangeUsername PUT /api/users/:id/username
func (h *AccountHandler) ChangeUsername(c *gin.Context) {
	var req changeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.ChangeUsername(c.Request.Context(), c.Param("id"), req.Username)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "username changed")
}

// ChangeImage PUT /api/users/:id/image (multipart field "image")
func (h *AccountHandler) ChangeImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "is required"})
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable upload", nil)
		return
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	a, err := h.Svc.ChangeImage(c.Request.Context(), c.Param("id"), src, file.Filename, contentType)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAccountResponse(a), "image changed")
}

// Search GET /api/users/search?q=&size=
func (h *AccountHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results")
}

// renderError maps the domain error taxonomy onto transport statuses.
func (h *AccountHandler) renderError(c *gin.Context, err error) {
	var (
		validationErr  *entity.ValidationError
		conflictErr    *entity.ConflictError
		notFoundErr    *entity.NotFoundError
		uploadErr      *entity.UploadError
		persistenceErr *entity.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		response.Error[any](c, http.StatusBadRequest, "validation failed",
			map[string]string{validationErr.Field: validationErr.Reason})
	case errors.As(err, &conflictErr):
		response.Error[any](c, http.StatusConflict, "already exists",
			map[string]string{conflictErr.Field: conflictErr.Value + " is already taken"})
	case errors.As(err, &notFoundErr):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	case errors.As(err, &uploadErr):
		response.Error[any](c, http.StatusBadGateway, "image upload failed", nil)
	case errors.As(err, &persistenceErr):
		if h.Logger != nil {
			h.Logger.WithError(persistenceErr).Error("persistence failure")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	default:
		if h.Logger != nil {
			h.Logger.WithError(err).Error("unhandled error")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
