package controllers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"cleanblog/config"
	"cleanblog/models"
	"cleanblog/utils"
)

// BlogController serves the public pages: paginated post list, about,
// contact form and post detail.
type BlogController struct {
	db     *gorm.DB
	cfg    *config.AppConfig
	mailer utils.Mailer
}

// NewBlogController creates a BlogController.
func NewBlogController(db *gorm.DB, cfg *config.AppConfig, mailer utils.Mailer) *BlogController {
	return &BlogController{db: db, cfg: cfg, mailer: mailer}
}

// Index renders one page of posts, most recent first. The page-no query
// parameter selects the page and is clamped into the valid range.
func (b *BlogController) Index(ctx *gin.Context) {
	pageNo := 1
	if v := ctx.Query("page-no"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			pageNo = n
		}
	}

	var total int64
	if err := b.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		serverError(ctx, "count posts", err)
		return
	}

	p := utils.Paginate(total, b.cfg.PostsPerPage, pageNo, "/")

	var posts []models.Post
	if err := b.db.Order("id DESC").Offset(p.Offset).Limit(p.PageSize).Find(&posts).Error; err != nil {
		serverError(ctx, "list posts", err)
		return
	}

	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"Site":       b.cfg.AppName,
		"Posts":      posts,
		"Pagination": p,
	})
}

// About renders the static about page.
func (b *BlogController) About(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "about.html", gin.H{"Site": b.cfg.AppName})
}

// Contact renders the contact form on GET and on POST stores the message
// and emails a notification to the configured recipient, with the
// submitter's address as Reply-To. Store or transport failures are fatal to
// the request; there is no retry.
func (b *BlogController) Contact(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		ctx.HTML(http.StatusOK, "contact.html", gin.H{"Site": b.cfg.AppName})
		return
	}

	entry := models.ContactMessage{
		Name:    ctx.PostForm("name"),
		Email:   ctx.PostForm("email"),
		PhoneNo: ctx.PostForm("phone_no"),
		Message: ctx.PostForm("msg"),
	}

	if err := b.db.Create(&entry).Error; err != nil {
		serverError(ctx, "store contact message", err)
		return
	}

	msg := utils.Message{
		To:      b.cfg.ContactRecipient,
		ReplyTo: entry.Email,
		Subject: fmt.Sprintf("New Message from %s by %s", b.cfg.AppName, entry.Name),
		Body:    fmt.Sprintf("Phone Number: %s\n\n%s", entry.PhoneNo, entry.Message),
	}
	if err := b.mailer.Send(msg); err != nil {
		serverError(ctx, "send contact notification", err)
		return
	}

	ctx.HTML(http.StatusOK, "contact.html", gin.H{
		"Site": b.cfg.AppName,
		"Sent": true,
	})
}

// ShowPost renders a post looked up by its slug, or a 404 empty-state page
// when no post carries that slug.
func (b *BlogController) ShowPost(ctx *gin.Context) {
	slug := ctx.Param("post_slug")

	var post models.Post
	err := b.db.Where("slug = ?", slug).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.HTML(http.StatusNotFound, "post.html", gin.H{
				"Site": b.cfg.AppName,
				"Post": nil,
			})
			return
		}
		serverError(ctx, "load post", err)
		return
	}

	ctx.HTML(http.StatusOK, "post.html", gin.H{
		"Site": b.cfg.AppName,
		"Post": &post,
		// sanitized on save, rendered unescaped here
		"Content": template.HTML(post.Content),
		"Date":    post.CreatedAt.Format(time.DateOnly),
	})
}

// serverError terminates the request with a 500. Database and mail
// failures are not recovered anywhere in this application.
func serverError(ctx *gin.Context, op string, err error) {
	if utils.Sugar != nil {
		utils.Sugar.Errorf("%s: %v", op, err)
	}
	ctx.String(http.StatusInternalServerError, "internal server error")
	ctx.Abort()
}
