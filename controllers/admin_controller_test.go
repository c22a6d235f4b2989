package controllers

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleanblog/models"
)

func TestLoginPageRenders(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})

	w := get(r, "/admin-login")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "username")
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})

	w := postForm(r, "/admin-login", url.Values{
		"username": {"admin"},
		"password": {"not-hunter2"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid username or password")
	for _, c := range w.Result().Cookies() {
		assert.NotEqual(t, "blog_session", c.Name, "no session on failed login")
	}
}

func TestLoginWrongUsername(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})

	w := postForm(r, "/admin-login", url.Values{
		"username": {"root"},
		"password": {"hunter2"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "invalid username or password")
}

func TestLoginSuccessAndPanel(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	seedPosts(t, db, 2)

	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Post 02")
	assert.Contains(t, w.Body.String(), "Post 01")
}

func TestLoginWhileAuthenticatedRedirects(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-login", cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-panel", w.Header().Get("Location"))
}

func TestAdminRoutesRequireSession(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})

	for _, path := range []string{
		"/admin-panel",
		"/admin-panel/posts/add-edit/0",
		"/admin-panel/posts/delete/1",
		"/admin-panel/logout",
	} {
		w := get(r, path)
		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		assert.Equal(t, "/admin-login", w.Header().Get("Location"), path)
	}
}

func TestAddPost(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig(t)
	r := newTestRouter(t, db, cfg, &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := postMultipart(t, r, "/admin-panel/posts/add-edit/0", map[string]string{
		"title":     "Hello",
		"sub_title": "World",
		"slug":      "hello-world",
		"content":   "<p>first</p>",
	}, "cover.png", []byte("png-bytes"), cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-panel", w.Header().Get("Location"))

	var post models.Post
	require.NoError(t, db.First(&post, "slug = ?", "hello-world").Error)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Subtitle)
	assert.Equal(t, "<p>first</p>", post.Content)
	assert.Equal(t, "cover.png", post.ThumbImgURL)
	assert.False(t, post.CreatedAt.IsZero())

	data, err := os.ReadFile(filepath.Join(cfg.ThumbDir, "cover.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestAddPostSanitizesContent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := postMultipart(t, r, "/admin-panel/posts/add-edit/0", map[string]string{
		"title":   "Scripted",
		"slug":    "scripted",
		"content": `<p>ok</p><script>alert("x")</script>`,
	}, "a.png", []byte("x"), cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)

	var post models.Post
	require.NoError(t, db.First(&post, "slug = ?", "scripted").Error)
	assert.Contains(t, post.Content, "<p>ok</p>")
	assert.NotContains(t, post.Content, "<script>")
}

func TestAddPostTraversalFilename(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig(t)
	r := newTestRouter(t, db, cfg, &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := postMultipart(t, r, "/admin-panel/posts/add-edit/0", map[string]string{
		"title": "Sneaky",
		"slug":  "sneaky",
	}, "../../etc/passwd", []byte("x"), cookie)

	require.Equal(t, http.StatusSeeOther, w.Code)

	var post models.Post
	require.NoError(t, db.First(&post, "slug = ?", "sneaky").Error)
	assert.Equal(t, "passwd", post.ThumbImgURL)

	_, err := os.Stat(filepath.Join(cfg.ThumbDir, "passwd"))
	assert.NoError(t, err, "file lands inside the thumbnail dir")
}

func TestAddPostMissingThumbnail(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := postMultipart(t, r, "/admin-panel/posts/add-edit/0", map[string]string{
		"title": "No Thumb",
		"slug":  "no-thumb",
	}, "", nil, cookie)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count, "nothing persisted on a rejected submit")
}

func TestEditPostFormPrefilled(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	seedPosts(t, db, 1)
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel/posts/add-edit/1", cookie)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Post 01")
	assert.Contains(t, w.Body.String(), "post-01")
}

func TestEditPostUpdatesFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	seedPosts(t, db, 1)
	cookie := loginAsAdmin(t, r)

	var before models.Post
	require.NoError(t, db.First(&before, 1).Error)

	w := postMultipart(t, r, "/admin-panel/posts/add-edit/1", map[string]string{
		"title":     "Renamed",
		"sub_title": "Fresh",
		"slug":      "renamed",
		"content":   "<p>edited</p>",
	}, "new.png", []byte("x"), cookie)

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var after models.Post
	require.NoError(t, db.First(&after, 1).Error)
	assert.Equal(t, "Renamed", after.Title)
	assert.Equal(t, "Fresh", after.Subtitle)
	assert.Equal(t, "renamed", after.Slug)
	assert.Equal(t, "<p>edited</p>", after.Content)
	assert.Equal(t, "new.png", after.ThumbImgURL)
	assert.True(t, after.CreatedAt.After(before.CreatedAt), "timestamp refreshed on edit")
}

func TestEditUnknownPost(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel/posts/add-edit/42", cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postMultipart(t, r, "/admin-panel/posts/add-edit/42", map[string]string{
		"title": "Ghost",
		"slug":  "ghost",
	}, "g.png", []byte("x"), cookie)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeletePostIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestConfig(t), &stubMailer{})
	seedPosts(t, db, 2)
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel/posts/delete/1", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-panel", w.Header().Get("Location"))

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// deleting the same id again is still a redirect, not an error
	w = get(r, "/admin-panel/posts/delete/1", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-panel", w.Header().Get("Location"))

	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeletePostBadID(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel/posts/delete/not-a-number", cookie)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	r := newTestRouter(t, newTestDB(t), newTestConfig(t), &stubMailer{})
	cookie := loginAsAdmin(t, r)

	w := get(r, "/admin-panel/logout", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-login", w.Header().Get("Location"))

	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "blog_session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie expired on logout")

	// the old token no longer opens the panel
	w = get(r, "/admin-panel", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin-login", w.Header().Get("Location"))
}
