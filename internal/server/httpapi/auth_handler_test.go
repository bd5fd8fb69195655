package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/server/models"
	"github.com/dkazakov/taskdeck/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	registerErr error
	loginErr    error
	refreshErr  error
	pair        *services.TokenPair
	gotEmail    string
	gotPassword string
	gotRefresh  string
}

func (f *fakeAuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{ID: "u1", Email: email}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.pair, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.gotRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.pair, nil
}

func newAuthHandler(svc *fakeAuthService) *AuthHandler {
	return NewAuthHandler(svc, logging.NewSlogLogger(slog.Default()))
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &fakeAuthService{}
	w := postJSON(t, newAuthHandler(svc).Register, `{"email":"a@x.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@x.com", svc.gotEmail)
	assert.Equal(t, "secret1", svc.gotPassword)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp["userId"])
	assert.Equal(t, "User registered successfully", resp["message"])
}

func TestAuthHandlerRegisterErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{"malformed json", `{"email":`, nil, http.StatusBadRequest, "Invalid input"},
		{"validation", `{"email":"x","password":"1"}`, common.ErrorValidation, http.StatusBadRequest, "Invalid input"},
		{"duplicate", `{"email":"a@x.com","password":"secret1"}`, common.ErrorDuplicateUser, http.StatusBadRequest, "User already exists"},
		{"storage failure", `{"email":"a@x.com","password":"secret1"}`, common.ErrorInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{registerErr: tt.serviceErr}
			w := postJSON(t, newAuthHandler(svc).Register, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Message)
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	svc := &fakeAuthService{pair: &services.TokenPair{AccessToken: "aaa", RefreshToken: "rrr"}}
	w := postJSON(t, newAuthHandler(svc).Login, `{"email":"a@x.com","password":"secret1"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "aaa", resp.AccessToken)
	assert.Equal(t, "rrr", resp.RefreshToken)
}

func TestAuthHandlerLogininvalid(t *testing.T) {
	svc := &fakeAuthService{loginErr: common.ErrorInvalidCredentials}
	w := postJSON(t, newAuthHandler(svc).Login, `{"email":"a@x.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid credentials", resp.Message)
}

func TestAuthHandlerRefresh(t *testing.T) {
	svc := &fakeAuthService{pair: &services.TokenPair{AccessToken: "aaa2", RefreshToken: "rrr2"}}
	w := postJSON(t, newAuthHandler(svc).Refresh, `{"refreshToken":"rrr"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rrr", svc.gotRefresh)

	var resp tokenPairResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "aaa2", resp.AccessToken)
}

func TestAuthHandlerRefreshErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"missing token", `{}`, nil, http.StatusUnauthorized},
		{"malformed json", `{`, nil, http.StatusUnauthorized},
		{"invalid token", `{"refreshToken":"bad"}`, common.ErrInvalidToken, http.StatusForbidden},
		{"user deleted", `{"refreshToken":"rrr"}`, common.ErrorUserNotFound, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{refreshErr: tt.serviceErr}
			w := postJSON(t, newAuthHandler(svc).Refresh, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandlerLogout(t *testing.T) {
	w := postJSON(t, newAuthHandler(&fakeAuthService{}).Logout, ``)
	assert.Equal(t, http.StatusOK, w.Code)
}
