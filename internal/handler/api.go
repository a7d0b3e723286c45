package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"studentportal/internal/auth"
	"studentportal/internal/card"
	"studentportal/internal/export"
	"studentportal/internal/metrics"
	"studentportal/internal/photo"
	"studentportal/internal/student"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type credentials struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) currentSession(c *gin.Context) {
	s, err := h.guard.Current(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.guard.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	auth.SetCookie(c, s, h.opts.CookieSecure)
	c.JSON(http.StatusOK, s)
}

func (h *Handler) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.guard.Signup(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": signedUp})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.guard.Logout(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	auth.ClearCookie(c, h.opts.CookieSecure)
	c.JSON(http.StatusOK, auth.Session{})
}

func (h *Handler) getBiodata(c *gin.Context) {
	rec, found, err := h.biodata.Load(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"biodata": rec, "found": found})
}

func (h *Handler) saveBiodata(c *gin.Context) {
	var rec student.Biodata
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.biodata.Save(c.Request.Context(), rec)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUpload+1<<20)
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.writeError(c, photo.ErrTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
		return
	}
	url, err := h.biodata.AttachPhoto(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profilePhoto": url})
}

func (h *Handler) listCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *Handler) getCourse(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) addCourse(c *gin.Context) {
	var d student.CourseDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.courses.Add(c.Request.Context(), d)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *Handler) updateCourse(c *gin.Context) {
	var d student.CourseDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handler) removeCourse(c *gin.Context) {
	confirm := student.Confirmed(c.Query("confirm") == "true")
	removed, err := h.courses.Remove(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) exportCourses(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.CoursesXLSX(&buf, courses); err != nil {
		h.writeError(c, err)
		return
	}
	metrics.CardExports.WithLabelValues("xlsx").Inc()
	c.Header("Content-Disposition", `attachment; filename="`+export.XLSXName+`"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

func (h *Handler) getCard(c *gin.Context) {
	cd, err := h.composeCard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cd)
}

func (h *Handler) printCard(c *gin.Context) {
	cd, err := h.composeCard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := card.RenderHTML(&buf, cd); err != nil {
		h.writeError(c, err)
		return
	}
	metrics.CardExports.WithLabelValues("html").Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) cardPDF(c *gin.Context) {
	cd, err := h.composeCard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.CardPDF(&buf, cd); err != nil {
		h.writeError(c, err)
		return
	}
	metrics.CardExports.WithLabelValues("pdf").Inc()
	c.Header("Content-Disposition", `attachment; filename="`+export.PDFName+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
