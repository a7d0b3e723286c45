package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/card"
	"studentportal/internal/photo"
	"studentportal/internal/student"
	"studentportal/internal/validation"
	"studentportal/internal/views"
)

// Options tune the HTTP layer.
type Options struct {
	Institution     string
	CardCourseLimit int
	CookieSecure    bool
	MaxUpload       int64
}

// Handler serves the JSON API and the server-rendered views.
type Handler struct {
	guard   *auth.Guard
	biodata *student.BiodataService
	courses *student.CourseService
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
}

// New wires the handler to its services.
func New(guard *auth.Guard, biodata *student.BiodataService, courses *student.CourseService, opts Options, logger *slog.Logger) *Handler {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 5 << 20
	}
	return &Handler{guard: guard, biodata: biodata, courses: courses, opts: opts, logger: logger, now: time.Now}
}

// Register mounts every route on r. sessionLimit guards the login and signup
// endpoints; it may be nil.
func (h *Handler) Register(r *gin.Engine, sessionLimit gin.HandlerFunc) {
	limit := func(final gin.HandlerFunc) []gin.HandlerFunc {
		if sessionLimit == nil {
			return []gin.HandlerFunc{final}
		}
		return []gin.HandlerFunc{sessionLimit, final}
	}

	session := r.Group("/v1/session")
	{
		session.GET("", h.currentSession)
		session.POST("/login", limit(h.login)...)
		session.POST("/signup", limit(h.signup)...)
		session.POST("/logout", h.logout)
	}

	api := r.Group("/v1", h.guard.RequireAPI())
	{
		api.GET("/biodata", h.getBiodata)
		api.PUT("/biodata", h.saveBiodata)
		api.POST("/biodata/photo", h.uploadPhoto)

		api.GET("/courses", h.listCourses)
		api.POST("/courses", h.addCourse)
		api.GET("/courses/export.xlsx", h.exportCourses)
		api.GET("/courses/:id", h.getCourse)
		api.PUT("/courses/:id", h.updateCourse)
		api.DELETE("/courses/:id", h.removeCourse)

		api.GET("/card", h.getCard)
		api.GET("/card/print", h.printCard)
		api.GET("/card/pdf", h.cardPDF)
	}

	r.GET(views.Login.Path, h.loginPage)
	r.POST(views.Login.Path, limit(h.loginForm)...)
	r.POST("/signup", limit(h.signupForm)...)
	r.POST("/logout", h.logoutForm)

	r.GET(views.Biodata.Path, h.page(views.Biodata, h.biodataPage))
	r.GET(views.Courses.Path, h.page(views.Courses, h.coursesPage))
	r.GET(views.StudentCard.Path, h.page(views.StudentCard, h.cardPage))

	pages := r.Group("", h.guard.RequireView())
	{
		pages.POST(views.Biodata.Path, h.biodataForm)
		pages.POST(views.Courses.Path, h.addCourseForm)
		pages.POST("/courses/:id", h.updateCourseForm)
		pages.GET("/courses/:id/delete", h.confirmDeletePage)
		pages.POST("/courses/:id/delete", h.deleteCourseForm)
	}

	r.NoRoute(h.noRoute)
}

// page resolves v against the route table before rendering it.
func (h *Handler) page(v views.View, render gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, redirect := views.Resolve(v.Path, h.guard.Authorized(c)); redirect != "" {
			c.Redirect(http.StatusFound, redirect)
			return
		}
		render(c)
	}
}

func (h *Handler) noRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	_, redirect := views.Resolve(c.Request.URL.Path, h.guard.Authorized(c))
	if redirect == "" {
		redirect = views.Login.Path
	}
	c.Redirect(http.StatusFound, redirect)
}

func (h *Handler) composeCard(ctx context.Context) (card.Card, error) {
	bio, err := h.biodata.Stored(ctx)
	if err != nil {
		return card.Card{}, err
	}
	var courses []student.Course
	if bio != nil {
		if courses, err = h.courses.List(ctx); err != nil {
			return card.Card{}, err
		}
	}
	return card.Compose(bio, courses, h.now(),
		card.WithInstitution(h.opts.Institution),
		card.WithCourseLimit(h.opts.CardCourseLimit),
	), nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, student.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, photo.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, photo.ErrUnsupportedImage), errors.Is(err, photo.ErrNotDataURL):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
