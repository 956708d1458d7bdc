package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwisetyawan/account-service/internal/application"
	"github.com/dwisetyawan/account-service/internal/infrastructure/inmem"
	"github.com/dwisetyawan/account-service/pkg/validation"
)

func newTestRouter(t *testing.T) (*gin.Engine, *application.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	svc := application.NewService(inmem.NewAccountRepository(), stubImages{}, nil, nil, nil, nil, "")
	h := NewAccountHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/users", h.Register)
	api.POST("/login", h.Login)
	api.GET("/users", h.List)
	api.GET("/users/:id", h.Get)
	api.PUT("/users/:id/password", h.ChangePassword)
	api.PUT("/users/:id/username", h.ChangeUsername)
	api.PUT("/users/:id/image", h.ChangeImage)
	return r, svc
}

type stubImages struct{}

func (stubImages) Upload(_ context.Context, objectPath, _ string, _ io.Reader) (string, error) {
	return "https://blobs.local/" + objectPath, nil
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerPayload() gin.H {
	return gin.H{
		"username":         "bob123",
		"email":            "bob@example.com",
		"password":         "Secret123",
		"confirm_password": "Secret123",
		"first_name":       "Bob",
		"last_name":        "Smith",
		"phone_number":     "+14155552671",
	}
}

func TestHandler_RegisterCreated(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/users", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bob123", data["username"])
	assert.Equal(t, true, data["is_active"])
	assert.NotEmpty(t, data["id"])

	// No password material in the response, under any key.
	assert.NotContains(t, strings.ToLower(w.Body.String()), "password")
	assert.NotContains(t, w.Body.String(), "Secret123")
}

func TestHandler_RegisterPasswordMismatch(t *testing.T) {
	r, _ := newTestRouter(t)

	p := registerPayload()
	p["password"] = "abc"
	p["confirm_password"] = "xyz"
	w := doJSON(t, r, http.MethodPost, "/api/users", p)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "confirm_password")
}

func TestHandler_RegisterBindingFailure(t *testing.T) {
	r, _ := newTestRouter(t)

	p := registerPayload()
	p["email"] = "not-an-email"
	w := doJSON(t, r, http.MethodPost, "/api/users", p)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestHandler_RegisterConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/users", registerPayload()).Code)

	p := registerPayload()
	p["email"] = "other@example.com"
	w := doJSON(t, r, http.MethodPost, "/api/users", p)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "username")
}

func TestHandler_LoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/users", registerPayload()).Code)

	ok := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "bob@example.com", "password": "Secret123"})
	require.Equal(t, http.StatusOK, ok.Code)
	assert.Contains(t, ok.Body.String(), "last_login")

	wrong := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "bob@example.com", "password": "nope1234"})
	unknown := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "ghost@example.com", "password": "Secret123"})

	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Contains(t, wrong.Body.String(), "invalid credentials")
	assert.Contains(t, unknown.Body.String(), "invalid credentials")
}

func TestHandler_GetNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/users/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ChangeUsername(t *testing.T) {
	r, _ := newTestRouter(t)

	created := doJSON(t, r, http.MethodPost, "/api/users", registerPayload())
	require.Equal(t, http.StatusCreated, created.Code)
	id := createdID(t, created)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%s/username", id), gin.H{"username": "bobby99"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bobby99")

	short := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%s/username", id), gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, short.Code)
}

func TestHandler_ChangePassword(t *testing.T) {
	r, _ := newTestRouter(t)

	created := doJSON(t, r, http.MethodPost, "/api/users", registerPayload())
	require.Equal(t, http.StatusCreated, created.Code)
	id := createdID(t, created)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%s/password", id), gin.H{
		"new_password":     "NewSecret456",
		"confirm_password": "NewSecret456",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password no longer authenticates, the new one does.
	old := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "bob@example.com", "password": "Secret123"})
	assert.Equal(t, http.StatusUnauthorized, old.Code)
	fresh := doJSON(t, r, http.MethodPost, "/api/login", gin.H{"email": "bob@example.com", "password": "NewSecret456"})
	assert.Equal(t, http.StatusOK, fresh.Code)

	reuse := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%s/password", id), gin.H{
		"new_password":     "NewSecret456",
		"confirm_password": "NewSecret456",
	})
	assert.Equal(t, http.StatusBadRequest, reuse.Code)
}

func TestHandler_ChangeImage(t *testing.T) {
	r, _ := newTestRouter(t)

	created := doJSON(t, r, http.MethodPost, "/api/users", registerPayload())
	require.Equal(t, http.StatusCreated, created.Code)
	id := createdID(t, created)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pngbytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/users/%s/image", id), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "avatars/"+id+"/")

	missing := doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/users/%s/image", id), nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestHandler_List(t *testing.T) {
	r, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, doJSON(t, r, http.MethodPost, "/api/users", registerPayload()).Code)

	w := doJSON(t, r, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}
