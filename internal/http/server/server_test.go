package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"baseserver/internal/app"
	"baseserver/internal/config"
	"baseserver/internal/dto"
	"baseserver/internal/models"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Env:         "local",
		ProjectsDir: t.TempDir(),
		Auth: config.Auth{
			BcryptCost:  bcrypt.MinCost,
			TokenTTL:    time.Hour,
			RememberTTL: 720 * time.Hour,
		},
		Uploads: config.Uploads{MaxFiles: 5, MaxBytes: 1 << 20},
	}

	a := app.NewApp(log, cfg)
	t.Cleanup(func() { a.Close() })

	return NewRouter(log, cfg.Uploads, a.TableService, a.AuthService, a.UserService, a.FileService)
}

func doJSON(t *testing.T, h http.Handler, method, path, project, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	if project != "" {
		r.Header.Set("X-Project-Name", project)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func registerAndLogin(t *testing.T, h http.Handler, project, email, password string) string {
	t.Helper()

	w := doJSON(t, h, http.MethodPost, "/rest/v1/auth/register", project, "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodPost, "/rest/v1/auth/login", project, "",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestMissingProjectHeader(t *testing.T) {
	t.Parallel()

	h := testRouter(t)

	w := doJSON(t, h, http.MethodPost, "/rest/v1/auth/register", "", "",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	h := testRouter(t)

	// First registration in a project makes an admin.
	w := doJSON(t, h, http.MethodPost, "/rest/v1/auth/register", "shop", "",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, models.RoleAdmin, user[models.UserFieldRole])
	assert.NotContains(t, user, models.UserFieldPassword)

	// Duplicate email conflicts.
	w = doJSON(t, h, http.MethodPost, "/rest/v1/auth/register", "shop", "",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Wrong password is a 401.
	w = doJSON(t, h, http.MethodPost, "/rest/v1/auth/login", "shop", "",
		map[string]string{"email": "a@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodPost, "/rest/v1/auth/login", "shop", "",
		map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// The token resolves to the caller's own profile.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/users/profile", "shop", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "a@x.com", profile[models.UserFieldEmail])
	assert.NotContains(t, profile, models.UserFieldPassword)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	h := testRouter(t)

	w := doJSON(t, h, http.MethodGet, "/rest/v1/tables/products", "shop", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products", "shop", "garbage-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenIsProjectScoped(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	// Same token against a different project must not verify.
	w := doJSON(t, h, http.MethodGet, "/rest/v1/tables/products", "other", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductsFlow(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	// Seed three products.
	var laptopID string
	for _, p := range []models.Document{
		{"name": "Laptop", "price": 1200, "category": "electronics"},
		{"name": "Novel", "price": 15, "category": "books"},
		{"name": "Monitor", "price": 1500, "category": "electronics"},
	} {
		w := doJSON(t, h, http.MethodPost, "/rest/v1/tables/products", "shop", token, p)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var stored models.Document
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
		require.NotEmpty(t, stored.ID())
		if stored["name"] == "Laptop" {
			laptopID = stored.ID()
		}
	}

	// String query values compare numerically against stored numbers.
	w := doJSON(t, h, http.MethodGet, "/rest/v1/tables/products?price_gte=1000", "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))

	var docs []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 2)

	// Sort descending by price.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products?_sort=price&_order=desc", "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 3)
	assert.Equal(t, "Monitor", docs[0]["name"])
	assert.Equal(t, "Novel", docs[2]["name"])

	// Patch every expensive product.
	w = doJSON(t, h, http.MethodPatch, "/rest/v1/tables/products?price_gte=1000", "shop", token,
		models.Document{"tags": []string{"premium"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"modified":2}`, w.Body.String())

	// Get one by id and see the patch applied.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products/"+laptopID, "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var laptop models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &laptop))
	assert.Equal(t, []any{"premium"}, laptop["tags"])

	// Count with a body filter.
	w = doJSON(t, h, http.MethodPost, "/rest/v1/tables/products/_count", "shop", token,
		map[string]any{"category": "electronics"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":2}`, w.Body.String())

	// Delete by id; a second fetch is a 404.
	w = doJSON(t, h, http.MethodDelete, "/rest/v1/tables/products/"+laptopID, "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":1}`, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products/"+laptopID, "shop", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkAndReservedTables(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	w := doJSON(t, h, http.MethodPost, "/rest/v1/tables/products/bulk", "shop", token,
		[]models.Document{{"name": "a"}, {"name": "b"}})
	require.Equal(t, http.StatusCreated, w.Code)

	var stored []models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Len(t, stored, 2)

	// A batch with one invalid member inserts nothing.
	w = doJSON(t, h, http.MethodPost, "/rest/v1/tables/products/bulk", "shop", token,
		[]models.Document{{"name": "c"}, {"price": 1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products", "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))

	// The users collection is not reachable through the table API.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/_users", "shop", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectDataIsolation(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	shopToken := registerAndLogin(t, h, "shop", "a@x.com", "secret1")
	blogToken := registerAndLogin(t, h, "blog", "b@x.com", "secret1")

	w := doJSON(t, h, http.MethodPost, "/rest/v1/tables/products", "shop", shopToken,
		models.Document{"name": "only-in-shop"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/rest/v1/tables/products", "blog", blogToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-Total-Count"))
}

func TestAdminUserRoutes(t *testing.T) {
	t.Parallel()

	h := testRouter(t)

	adminToken := registerAndLogin(t, h, "shop", "admin@x.com", "secret1")
	userToken := registerAndLogin(t, h, "shop", "user@x.com", "secret1")

	// Find the plain user's id through the admin's own profile lookup
	// flow: fetch the second user's profile with their token first.
	w := doJSON(t, h, http.MethodGet, "/rest/v1/users/profile", "shop", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plain models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plain))
	plainID := plain.ID()
	require.NotEmpty(t, plainID)

	// A non-admin cannot read other users by id.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/users/"+plainID, "shop", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The admin can.
	w = doJSON(t, h, http.MethodGet, "/rest/v1/users/"+plainID, "shop", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, "user@x.com", fetched[models.UserFieldEmail])

	// Admin deletes the user; their token stays valid (stateless JWT)
	// but the profile is gone.
	w = doJSON(t, h, http.MethodDelete, "/rest/v1/users/"+plainID, "shop", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/rest/v1/users/profile", "shop", userToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSelfServiceUpdate(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	w := doJSON(t, h, http.MethodPut, "/rest/v1/users/update", "shop", token,
		map[string]string{"email": "renamed@x.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/rest/v1/users/profile", "shop", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "renamed@x.com", profile[models.UserFieldEmail])
}

func TestStorageFlow(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	// Multipart upload.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("quarterly numbers"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/rest/v1/storage/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("X-Project-Name", "shop")
	r.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploaded dto.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &uploaded))
	require.Len(t, uploaded.Files, 1)
	stored := uploaded.Files[0].Filename
	assert.True(t, strings.HasSuffix(stored, "-report.txt"))
	assert.Equal(t, int64(len("quarterly numbers")), uploaded.Files[0].Size)

	// List shows the stored name.
	lw := doJSON(t, h, http.MethodGet, "/rest/v1/storage/files", "shop", token, nil)
	require.Equal(t, http.StatusOK, lw.Code)
	assert.Contains(t, lw.Body.String(), stored)

	// Download round-trips the content.
	dw := doJSON(t, h, http.MethodGet, "/rest/v1/storage/files/"+stored, "shop", token, nil)
	require.Equal(t, http.StatusOK, dw.Code)
	assert.Equal(t, "quarterly numbers", dw.Body.String())
	assert.Contains(t, dw.Header().Get("Content-Disposition"), stored)

	// Delete, then the download is a 404.
	del := doJSON(t, h, http.MethodDelete, "/rest/v1/storage/files/"+stored, "shop", token, nil)
	require.Equal(t, http.StatusOK, del.Code)

	miss := doJSON(t, h, http.MethodGet, "/rest/v1/storage/files/"+stored, "shop", token, nil)
	assert.Equal(t, http.StatusNotFound, miss.Code)
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/rest/v1/storage/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("X-Project-Name", "shop")
	r.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectsTooManyFiles(t *testing.T) {
	t.Parallel()

	h := testRouter(t)
	token := registerAndLogin(t, h, "shop", "a@x.com", "secret1")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < 6; i++ {
		part, err := mw.CreateFormFile("files", fmt.Sprintf("f%d.txt", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/rest/v1/storage/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set("X-Project-Name", "shop")
	r.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
