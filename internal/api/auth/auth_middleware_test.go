package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-todo-api/internal/types"
)

type MockUserFinder struct {
	mock.Mock
}

func (m *MockUserFinder) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Detail
}

func TestAuthenticate(t *testing.T) {
	tokens := newTestTokenService(t)
	activeUser := &types.User{ID: 1, Name: "User_1", Email: "user_1@example.com", IsActive: true}
	inactiveUser := &types.User{ID: 2, Name: "User_2", Email: "user_2@example.com", IsActive: false}

	validToken, err := tokens.Issue(types.TokenSubject{Email: activeUser.Email, ID: activeUser.ID})
	require.NoError(t, err)
	inactiveToken, err := tokens.Issue(types.TokenSubject{Email: inactiveUser.Email, ID: inactiveUser.ID})
	require.NoError(t, err)
	unknownToken, err := tokens.Issue(types.TokenSubject{Email: "ghost@example.com", ID: 99})
	require.NoError(t, err)

	expiredSvc := newTestTokenService(t)
	expiredSvc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expiredSvc.Issue(types.TokenSubject{Email: activeUser.Email, ID: activeUser.ID})
	require.NoError(t, err)

	users := new(MockUserFinder)
	users.On("GetUserByEmail", mock.Anything, activeUser.Email).Return(activeUser, nil)
	users.On("GetUserByEmail", mock.Anything, inactiveUser.Email).Return(inactiveUser, nil)
	users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, types.ErrNotFound)

	var seen *types.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Authenticate(tokens, users, discardLogger())(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"missing header", "", http.StatusUnauthorized, MsgNotAuthenticated},
		{"wrong scheme", "Basic " + validToken, http.StatusUnauthorized, MsgNotAuthenticated},
		{"empty token", "Bearer ", http.StatusUnauthorized, MsgNotAuthenticated},
		{"malformed token", "Bearer abc.def.ghi", http.StatusUnauthorized, MsgInvalidCredentials},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, MsgTokenExpired},
		{"unknown user", "Bearer " + unknownToken, http.StatusUnauthorized, MsgInvalidCredentials},
		{"inactive user", "Bearer " + inactiveToken, http.StatusUnauthorized, MsgInvalidCredentials},
		{"valid token", "Bearer " + validToken, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + validToken, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
				assert.Equal(t, tt.wantDetail, decodeDetail(t, rr))
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, activeUser.ID, seen.ID)
		})
	}
}

func TestAuthenticate_StoreError(t *testing.T) {
	tokens := newTestTokenService(t)
	token, err := tokens.Issue(types.TokenSubject{Email: "user_1@example.com", ID: 1})
	require.NoError(t, err)

	users := new(MockUserFinder)
	users.On("GetUserByEmail", mock.Anything, "user_1@example.com").Return(nil, errors.New("connection refused"))

	handler := Authenticate(tokens, users, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetUserFromContext(t *testing.T) {
	_, ok := GetUserFromContext(context.Background())
	assert.False(t, ok)

	u := &types.User{ID: 3}
	got, ok := GetUserFromContext(WithUser(context.Background(), u))
	assert.True(t, ok)
	assert.Same(t, u, got)
}
