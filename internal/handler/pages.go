package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/card"
	"studentportal/internal/student"
	"studentportal/internal/validation"
	"studentportal/internal/views"
)

// notices are shown after a redirect, keyed by the notice query parameter.
var notices = map[string]views.Flash{
	"saved":   {Kind: "success", Message: "Biodata saved successfully"},
	"added":   {Kind: "success", Message: "Course added successfully"},
	"updated": {Kind: "success", Message: "Course updated successfully"},
	"deleted": {Kind: "success", Message: "Course has been deleted."},
	"welcome": {Kind: "success", Message: "Login Successful! Welcome to Student Portal"},
}

const (
	correctFields = "Please correct the highlighted fields"
	signedUp      = "Account Created! Please login to continue"
)

var credentialMessages = map[error]string{
	auth.ErrMissingCredentials: "Please fill all fields",
	auth.ErrPasswordMismatch:   "Passwords do not match",
}

// errCreditHours reports a non-numeric credit hours value, the only course
// form field that can fail to decode.
var errCreditHours = &validation.Error{Fields: map[string]string{"creditHours": "Credit Hours must be between 1 and 6"}}

func (h *Handler) render(c *gin.Context, status int, name string, p views.Page) {
	if p.Flash == nil {
		if n, ok := notices[c.Query("notice")]; ok {
			p.Flash = &n
		}
	}
	if p.View.Protected {
		p.Email = h.guard.Email(c.Request.Context())
	}
	var buf bytes.Buffer
	if err := views.Render(&buf, name, p); err != nil {
		h.logger.Error("render page failed", "page", name, "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login", views.Page{View: views.Login, Data: c.Query("mode") == "signup"})
}

func (h *Handler) loginForm(c *gin.Context) {
	s, err := h.guard.Login(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		h.formError(c, "login", views.Page{View: views.Login}, err)
		return
	}
	auth.SetCookie(c, s, h.opts.CookieSecure)
	c.Redirect(http.StatusSeeOther, views.Biodata.Path+"?notice=welcome")
}

func (h *Handler) signupForm(c *gin.Context) {
	err := h.guard.Signup(c.Request.Context(), c.PostForm("email"), c.PostForm("password"), c.PostForm("confirmPassword"))
	if err != nil {
		h.formError(c, "login", views.Page{View: views.Login, Data: true}, err)
		return
	}
	h.render(c, http.StatusOK, "login", views.Page{
		View:  views.Login,
		Flash: &views.Flash{Kind: "success", Message: signedUp},
	})
}

func (h *Handler) logoutForm(c *gin.Context) {
	if err := h.guard.Logout(c.Request.Context()); err != nil {
		h.logger.Error("logout failed", "error", err)
	}
	auth.ClearCookie(c, h.opts.CookieSecure)
	c.Redirect(http.StatusSeeOther, views.Login.Path)
}

func (h *Handler) biodataPage(c *gin.Context) {
	rec, _, err := h.biodata.Load(c.Request.Context())
	if err != nil {
		h.pageError(c, err)
		return
	}
	h.render(c, http.StatusOK, "biodata", views.Page{View: views.Biodata, Data: views.NewBiodataForm(rec, nil)})
}

func (h *Handler) biodataForm(c *gin.Context) {
	var rec student.Biodata
	if err := c.ShouldBind(&rec); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	if fh, err := c.FormFile("photo"); err == nil && fh.Size > 0 {
		url, err := h.attachUpload(c, fh)
		if err != nil {
			errs := map[string]string{"profilePhoto": err.Error()}
			h.render(c, http.StatusUnprocessableEntity, "biodata", views.Page{
				View:   views.Biodata,
				Flash:  &views.Flash{Kind: "error", Message: "Photo could not be processed"},
				Errors: errs,
				Data:   views.NewBiodataForm(rec, errs),
			})
			return
		}
		rec.ProfilePhoto = url
	}

	if _, err := h.biodata.Save(c.Request.Context(), rec); err != nil {
		var verr *validation.Error
		if !errors.As(err, &verr) {
			h.pageError(c, err)
			return
		}
		h.render(c, http.StatusUnprocessableEntity, "biodata", views.Page{
			View:   views.Biodata,
			Flash:  &views.Flash{Kind: "error", Message: correctFields},
			Errors: verr.Fields,
			Data:   views.NewBiodataForm(rec, verr.Fields),
		})
		return
	}
	c.Redirect(http.StatusSeeOther, views.Biodata.Path+"?notice=saved")
}

func (h *Handler) attachUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUpload+1))
	if err != nil {
		return "", err
	}
	return h.biodata.AttachPhoto(c.Request.Context(), data)
}

func (h *Handler) coursesPage(c *gin.Context) {
	ctx := c.Request.Context()
	courses, err := h.courses.List(ctx)
	if err != nil {
		h.pageError(c, err)
		return
	}
	data := views.CoursesPage{Courses: courses}
	if id := c.Query("edit"); id != "" {
		course, err := h.courses.Get(ctx, id)
		if err == nil {
			data.Draft, data.EditID = course.CourseDraft, course.ID
		}
	}
	h.render(c, http.StatusOK, "courses", views.Page{View: views.Courses, Data: data})
}

func (h *Handler) addCourseForm(c *gin.Context) {
	var d student.CourseDraft
	if err := c.ShouldBind(&d); err != nil {
		h.logger.Debug("course form decode failed", "error", err)
		h.courseFormError(c, d, "", errCreditHours)
		return
	}
	if _, err := h.courses.Add(c.Request.Context(), d); err != nil {
		h.courseFormError(c, d, "", err)
		return
	}
	c.Redirect(http.StatusSeeOther, views.Courses.Path+"?notice=added")
}

func (h *Handler) updateCourseForm(c *gin.Context) {
	id := c.Param("id")
	var d student.CourseDraft
	if err := c.ShouldBind(&d); err != nil {
		h.logger.Debug("course form decode failed", "error", err)
		h.courseFormError(c, d, id, errCreditHours)
		return
	}
	if _, err := h.courses.Update(c.Request.Context(), id, d); err != nil {
		h.courseFormError(c, d, id, err)
		return
	}
	c.Redirect(http.StatusSeeOther, views.Courses.Path+"?notice=updated")
}

func (h *Handler) confirmDeletePage(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.pageError(c, err)
		return
	}
	h.render(c, http.StatusOK, "confirm", views.Page{View: views.Courses, Data: course})
}

func (h *Handler) deleteCourseForm(c *gin.Context) {
	confirm := student.Confirmed(c.PostForm("confirm") == "true")
	removed, err := h.courses.Remove(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		h.pageError(c, err)
		return
	}
	if !removed {
		c.Redirect(http.StatusSeeOther, views.Courses.Path)
		return
	}
	c.Redirect(http.StatusSeeOther, views.Courses.Path+"?notice=deleted")
}

func (h *Handler) cardPage(c *gin.Context) {
	cd, err := h.composeCard(c.Request.Context())
	if err != nil {
		h.pageError(c, err)
		return
	}
	html, err := card.Fragment(cd)
	if err != nil {
		h.pageError(c, err)
		return
	}
	h.render(c, http.StatusOK, "card", views.Page{View: views.StudentCard, Data: views.CardPage{Empty: cd.Empty, HTML: html}})
}

func (h *Handler) courseFormError(c *gin.Context, d student.CourseDraft, editID string, err error) {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		h.pageError(c, err)
		return
	}
	courses, lerr := h.courses.List(c.Request.Context())
	if lerr != nil {
		h.pageError(c, lerr)
		return
	}
	h.render(c, http.StatusUnprocessableEntity, "courses", views.Page{
		View:   views.Courses,
		Flash:  &views.Flash{Kind: "error", Message: correctFields},
		Errors: verr.Fields,
		Data:   views.CoursesPage{Courses: courses, Draft: d, EditID: editID},
	})
}

func (h *Handler) formError(c *gin.Context, name string, p views.Page, err error) {
	for target, msg := range credentialMessages {
		if errors.Is(err, target) {
			p.Flash = &views.Flash{Kind: "error", Message: msg}
			h.render(c, http.StatusBadRequest, name, p)
			return
		}
	}
	h.pageError(c, err)
}

func (h *Handler) pageError(c *gin.Context, err error) {
	if errors.Is(err, student.ErrCourseNotFound) {
		c.Redirect(http.StatusSeeOther, views.Courses.Path)
		return
	}
	h.logger.Error("page failed", "path", c.FullPath(), "error", err)
	c.String(http.StatusInternalServerError, "internal error")
}
