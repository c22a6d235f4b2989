package controllers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cleanblog/config"
	"cleanblog/middleware"
	"cleanblog/models"
	"cleanblog/utils"
)

// AdminController implements the admin panel: login, post management with
// thumbnail upload, and logout. Authorization itself lives in
// middleware.AdminRequired; handlers here assume it already ran.
type AdminController struct {
	db   *gorm.DB
	cfg  *config.AppConfig
	auth middleware.Authenticator
}

// NewAdminController creates an AdminController.
func NewAdminController(db *gorm.DB, cfg *config.AppConfig, auth middleware.Authenticator) *AdminController {
	return &AdminController{db: db, cfg: cfg, auth: auth}
}

// Login renders the login form, and on POST validates the credential. A
// wrong credential re-renders the form without creating a session; an
// already authenticated visitor is sent straight to the panel.
func (a *AdminController) Login(ctx *gin.Context) {
	if middleware.IsAdmin(ctx, a.cfg) {
		ctx.Redirect(http.StatusSeeOther, "/admin-panel")
		return
	}

	if ctx.Request.Method != http.MethodPost {
		ctx.HTML(http.StatusOK, "admin_login.html", gin.H{"Site": a.cfg.AppName})
		return
	}

	username := ctx.PostForm("username")
	password := ctx.PostForm("password")

	if !a.auth.Authenticate(username, password) {
		ctx.HTML(http.StatusOK, "admin_login.html", gin.H{
			"Site":  a.cfg.AppName,
			"Error": "invalid username or password",
		})
		return
	}

	ttl := time.Duration(a.cfg.SessionTTLHours) * time.Hour
	token := utils.NewSession(username, ttl)
	ctx.SetCookie(middleware.SessionCookieName, token, int(ttl.Seconds()), "/", "", false, true)
	ctx.Redirect(http.StatusSeeOther, "/admin-panel")
}

// Panel lists all posts, unpaginated, most recent first.
func (a *AdminController) Panel(ctx *gin.Context) {
	var posts []models.Post
	if err := a.db.Order("id DESC").Find(&posts).Error; err != nil {
		serverError(ctx, "list posts", err)
		return
	}

	ctx.HTML(http.StatusOK, "admin_panel.html", gin.H{
		"Site":  a.cfg.AppName,
		"Posts": posts,
	})
}

// EditPost renders the add/edit form on GET and upserts a post on POST.
// The s_no path parameter selects the post; the sentinel "0" means create.
// The thumbnail is read from the thumb-img field on every submit, so an
// edit always re-uploads and overwrites the stored reference.
func (a *AdminController) EditPost(ctx *gin.Context) {
	sNo := ctx.Param("s_no")

	if ctx.Request.Method != http.MethodPost {
		post := &models.Post{}
		if sNo != "0" {
			var err error
			post, err = a.findPost(ctx, sNo)
			if err != nil {
				return
			}
		}
		ctx.HTML(http.StatusOK, "edit_post.html", gin.H{
			"Site": a.cfg.AppName,
			"SNo":  sNo,
			"Post": post,
		})
		return
	}

	thumbName, ok := a.saveThumbnail(ctx)
	if !ok {
		return
	}

	now := time.Now()

	if sNo == "0" {
		post := models.Post{
			Title:       ctx.PostForm("title"),
			Subtitle:    ctx.PostForm("sub_title"),
			Slug:        ctx.PostForm("slug"),
			Content:     utils.Sanitize(ctx.PostForm("content")),
			ThumbImgURL: thumbName,
			CreatedAt:   now,
		}
		if err := a.db.Create(&post).Error; err != nil {
			serverError(ctx, "create post", err)
			return
		}
	} else {
		post, err := a.findPost(ctx, sNo)
		if err != nil {
			return
		}
		post.Title = ctx.PostForm("title")
		post.Subtitle = ctx.PostForm("sub_title")
		post.Slug = ctx.PostForm("slug")
		post.Content = utils.Sanitize(ctx.PostForm("content"))
		post.ThumbImgURL = thumbName
		post.CreatedAt = now
		if err := a.db.Save(post).Error; err != nil {
			serverError(ctx, "update post", err)
			return
		}
	}

	ctx.Redirect(http.StatusSeeOther, "/admin-panel")
}

// DeletePost removes the post with the given id. Deleting an id that does
// not exist is a no-op that still redirects to the panel, so the operation
// is idempotent.
func (a *AdminController) DeletePost(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("s_no"))
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.db.Delete(&models.Post{}, id).Error; err != nil {
		serverError(ctx, "delete post", err)
		return
	}

	ctx.Redirect(http.StatusSeeOther, "/admin-panel")
}

// Logout clears the admin session. Without a live session it is a no-op;
// either way the cookie is dropped and the visitor lands on the login page.
func (a *AdminController) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(middleware.SessionCookieName); err == nil {
		utils.DeleteSession(token)
	}
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusSeeOther, "/admin-login")
}

// findPost loads a post by its string-encoded id, terminating the request
// with 404 or 500 when the lookup fails.
func (a *AdminController) findPost(ctx *gin.Context, sNo string) (*models.Post, error) {
	var post models.Post
	err := a.db.First(&post, "id = ?", sNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.String(http.StatusNotFound, "post not found")
			ctx.Abort()
			return nil, err
		}
		serverError(ctx, "load post", err)
		return nil, err
	}
	return &post, nil
}

// saveThumbnail stores the uploaded thumb-img file under the configured
// directory using a sanitized version of the client filename, and returns
// the stored name. The field is required on every submit.
func (a *AdminController) saveThumbnail(ctx *gin.Context) (string, bool) {
	file, header, err := ctx.Request.FormFile("thumb-img")
	if err != nil {
		ctx.String(http.StatusBadRequest, "thumbnail image is required")
		return "", false
	}
	defer file.Close()

	maxSize := int64(a.cfg.MaxUploadSizeMB) * 1024 * 1024
	if header.Size > maxSize {
		ctx.String(http.StatusBadRequest, "thumbnail exceeds size limit")
		return "", false
	}

	name, err := utils.SanitizeFilename(header.Filename)
	if err != nil {
		ctx.String(http.StatusBadRequest, "invalid thumbnail filename")
		return "", false
	}

	if err := os.MkdirAll(a.cfg.ThumbDir, 0o755); err != nil {
		serverError(ctx, "create thumbnail directory", err)
		return "", false
	}

	dst, err := os.Create(filepath.Join(a.cfg.ThumbDir, name))
	if err != nil {
		serverError(ctx, "create thumbnail file", err)
		return "", false
	}
	defer dst.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(dst, lr)
	if err != nil {
		_ = os.Remove(dst.Name())
		serverError(ctx, "write thumbnail file", err)
		return "", false
	}
	if written > maxSize {
		_ = os.Remove(dst.Name())
		ctx.String(http.StatusBadRequest, "thumbnail exceeds size limit")
		return "", false
	}

	return name, true
}
