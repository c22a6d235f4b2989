package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cleanblog/config"
	"cleanblog/middleware"
	"cleanblog/models"
	"cleanblog/utils"
)

// stubMailer records messages instead of talking to an SMTP relay.
type stubMailer struct {
	sent []utils.Message
	err  error
}

func (m *stubMailer) Send(msg utils.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	hash, err := utils.HashPassword("hunter2")
	require.NoError(t, err)
	return &config.AppConfig{
		AppName:           "Test Blog",
		PostsPerPage:      10,
		ThumbDir:          t.TempDir(),
		MaxUploadSizeMB:   5,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
		SessionTTLHours:   1,
		ContactRecipient:  "owner@example.com",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Post{}, &models.ContactMessage{}))
	return db
}

// newTestRouter registers the same route table as routes.SetupRouter minus
// access logging and static hosting.
func newTestRouter(t *testing.T, db *gorm.DB, cfg *config.AppConfig, mailer utils.Mailer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")

	blog := NewBlogController(db, cfg, mailer)
	admin := NewAdminController(db, cfg, middleware.NewCredentialAuthenticator(cfg))

	r.GET("/", blog.Index)
	r.GET("/about", blog.About)
	r.GET("/contact", blog.Contact)
	r.POST("/contact", blog.Contact)
	r.GET("/posts/:post_slug", blog.ShowPost)

	r.GET("/admin-login", admin.Login)
	r.POST("/admin-login", admin.Login)

	g := r.Group("/admin-panel", middleware.AdminRequired(cfg))
	g.GET("", admin.Panel)
	g.GET("/posts/add-edit/:s_no", admin.EditPost)
	g.POST("/posts/add-edit/:s_no", admin.EditPost)
	g.GET("/posts/delete/:s_no", admin.DeletePost)
	g.POST("/posts/delete/:s_no", admin.DeletePost)
	g.GET("/logout", admin.Logout)

	return r
}

func get(r *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

// postMultipart submits a post form with an attached thumb-img file. A nil
// file map omits the file field entirely.
func postMultipart(t *testing.T, r *gin.Engine, path string, fields map[string]string, filename string, fileBody []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("thumb-img", filename)
		require.NoError(t, err)
		_, err = fw.Write(fileBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)
	return w
}

// loginAsAdmin performs the login flow and returns the session cookie.
func loginAsAdmin(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	w := postForm(r, "/admin-login", url.Values{
		"username": {"admin"},
		"password": {"hunter2"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/admin-panel", w.Header().Get("Location"))

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}
