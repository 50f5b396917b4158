package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Gabito0/yodlr-backend/internal/auth"
	"github.com/Gabito0/yodlr-backend/internal/handler"
	"github.com/Gabito0/yodlr-backend/internal/model"
	"github.com/Gabito0/yodlr-backend/internal/service"
)

// memoryUserRepository is an in-memory stand-in for the users table. It
// mirrors the store contract the service relies on, including the unique
// email index.
type memoryUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]model.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{nextID: 1, users: map[uint]model.User{}}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepository) List(ctx context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

func (r *memoryUserRepository) UpdateColumns(ctx context.Context, id uint, cols map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range cols {
		switch col {
		case "email":
			u.Email = val.(string)
		case "first_name":
			u.FirstName = val.(string)
		case "last_name":
			u.LastName = val.(string)
		case "state":
			u.State = val.(model.UserState)
		case "password_hash":
			u.PasswordHash = val.(string)
		}
	}
	r.users[id] = u
	return nil
}

func (r *memoryUserRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

type testServer struct {
	e     *echo.Echo
	codec *auth.TokenCodec
	svc   service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := newMemoryUserRepository()
	svc := service.NewUserService(repo, nil)
	codec := auth.NewTokenCodec("test-secret", 0)

	e := echo.New()
	Register(e, codec, handler.NewAuthHandler(svc, codec), handler.NewUserHandler(svc))
	return &testServer{e: e, codec: codec, svc: svc}
}

func (ts *testServer) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	admin, err := ts.svc.Add(context.Background(), "admin@getyodlr.com", "admin-password", "Admin", "User", true, model.StateActive)
	require.NoError(t, err)
	token, err := ts.codec.Issue(admin.ID, true)
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (string, int) {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message, body.Error.Status
}

func TestRegisterLoginAndFetchSelf(t *testing.T) {
	ts := newTestServer(t)

	// register
	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Token)

	claims, err := ts.codec.Verify(created.Token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)

	// login
	rec = ts.request(t, http.MethodPost, "/auth/token", "",
		`{"email":"kyle@getyodlr.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	// fetch own record with own token
	rec = ts.request(t, http.MethodGet, "/users/1", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "kyle@getyodlr.com", got.User.Email)
	assert.False(t, got.User.IsAdmin)
	assert.Equal(t, model.StatePending, got.User.State)

	// the password never appears in any response
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	body := `{"email":"dup@getyodlr.com","password":"password123","firstName":"Dup","lastName":"User"}`
	rec := ts.request(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg, status := decodeEnvelope(t, rec)
	assert.Contains(t, msg, "Duplicate email")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// missing fields
	rec = ts.request(t, http.MethodPost, "/auth/token", "", `{"email":"kyle@getyodlr.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// wrong password and unknown email report the same message
	rec = ts.request(t, http.MethodPost, "/auth/token", "",
		`{"email":"kyle@getyodlr.com","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	wrongPassMsg, _ := decodeEnvelope(t, rec)

	rec = ts.request(t, http.MethodPost, "/auth/token", "",
		`{"email":"nobody@getyodlr.com","password":"password123"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownEmailMsg, _ := decodeEnvelope(t, rec)

	assert.Equal(t, wrongPassMsg, unknownEmailMsg)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	// no token
	rec = ts.request(t, http.MethodGet, "/users", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// non-admin token
	rec = ts.request(t, http.MethodGet, "/users", reg.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin token
	rec = ts.request(t, http.MethodGet, "/users", adminToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Users []model.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Users, 2)
}

func TestGetOtherUserForbidden(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"a@getyodlr.com","password":"password123","firstName":"A","lastName":"One"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var a struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))

	rec = ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"b@getyodlr.com","password":"password123","firstName":"B","lastName":"Two"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/users/2", a.Token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCreateUser(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken(t)

	rec := ts.request(t, http.MethodPost, "/users", adminToken,
		`{"email":"new@getyodlr.com","password":"password123","firstName":"New","lastName":"User","isAdmin":true,"state":"active"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.User.IsAdmin)
	assert.Equal(t, model.StateActive, got.User.State)
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	// partial update touches only the named field
	rec = ts.request(t, http.MethodPut, "/users/1", reg.Token, `{"firstName":"Kyler"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Kyler", got.User.FirstName)
	assert.Equal(t, "White", got.User.LastName)
	assert.Equal(t, "kyle@getyodlr.com", got.User.Email)

	// password change with wrong current password
	rec = ts.request(t, http.MethodPut, "/users/1", reg.Token,
		`{"currentPassword":"wrong","newPassword":"next-password"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	msg, _ := decodeEnvelope(t, rec)
	assert.Equal(t, "Incorrect password", msg)

	// password change with the right current password
	rec = ts.request(t, http.MethodPut, "/users/1", reg.Token,
		`{"currentPassword":"password123","newPassword":"next-password"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// the new password now authenticates
	rec = ts.request(t, http.MethodPost, "/auth/token", "",
		`{"email":"kyle@getyodlr.com","password":"next-password"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestActivateUser(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.adminToken(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// registered user has id 2, after the seeded admin
	rec = ts.request(t, http.MethodPatch, "/users/activate", adminToken, `{"id":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, model.StateActive, got.User.State)

	// activation is one-way
	rec = ts.request(t, http.MethodPatch, "/users/activate", adminToken, `{"id":2}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg, _ := decodeEnvelope(t, rec)
	assert.Contains(t, msg, "already active")

	// PUT is accepted as well
	rec = ts.request(t, http.MethodPut, "/users/activate", adminToken, `{"id":99}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/auth/register", "",
		`{"email":"kyle@getyodlr.com","password":"password123","firstName":"Kyle","lastName":"White"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = ts.request(t, http.MethodDelete, "/users/1", reg.Token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	adminToken := ts.adminToken(t)
	rec = ts.request(t, http.MethodDelete, "/users/1", adminToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnmatchedRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	_, status := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusNotFound, status)
}
