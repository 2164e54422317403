package v1

import (
	"errors"
	"io"
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
	maxBytes int64
}

func NewResumeHandler(protected *gin.RouterGroup, resumeUC domain.ResumeUsecase, maxBytes int64, uploadLimit gin.HandlerFunc) {
	handler := &ResumeHandler{resumeUC: resumeUC, maxBytes: maxBytes}

	upload := []gin.HandlerFunc{handler.Add}
	if uploadLimit != nil {
		upload = append([]gin.HandlerFunc{uploadLimit}, upload...)
	}

	resumes := protected.Group("/users/:id/resumes")
	{
		resumes.GET("", handler.List)
		resumes.POST("", upload...)
		resumes.DELETE("/:resumeId", handler.Remove)
		resumes.PUT("/:resumeId/primary", handler.SetPrimary)
		resumes.PATCH("/:resumeId/downloadable", handler.SetDownloadable)
	}
}

// List godoc
// @Summary      List résumés
// @Tags         resumes
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      403  {object}  response.Response
// @Router       /users/{id}/resumes [get]
// @Security     BearerAuth
func (h *ResumeHandler) List(c *gin.Context) {
	list, err := h.resumeUC.List(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resumes", list)
}

// Add godoc
// @Summary      Upload a résumé
// @Description  Accepts pdf, doc, docx, odt, rtf and txt. At most 10 résumés per user.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "User ID"
// @Param        file  formData  file    true  "Résumé document"
// @Success      201  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /users/{id}/resumes [post]
// @Security     BearerAuth
func (h *ResumeHandler) Add(c *gin.Context) {
	if h.maxBytes > 0 {
		// Multipart framing needs some headroom over the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.BadRequest("File is too large"))
			return
		}
		c.Error(apperror.BadRequest("Multipart field 'file' is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.BadRequest("Unable to read uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(apperror.BadRequest("Unable to read uploaded file"))
		return
	}

	user, err := h.resumeUC.Add(c.Request.Context(), middleware.Identity(c), c.Param("id"), domain.ResumeUpload{
		Filename: fileHeader.Filename,
		Data:     data,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Resume uploaded", user)
}

// Remove godoc
// @Summary      Delete a résumé
// @Tags         resumes
// @Produce      json
// @Param        id        path      string  true  "User ID"
// @Param        resumeId  path      string  true  "Résumé ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/resumes/{resumeId} [delete]
// @Security     BearerAuth
func (h *ResumeHandler) Remove(c *gin.Context) {
	user, err := h.resumeUC.Remove(c.Request.Context(), middleware.Identity(c), c.Param("id"), c.Param("resumeId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume deleted", user)
}

// SetPrimary godoc
// @Summary      Mark a résumé as primary
// @Tags         resumes
// @Produce      json
// @Param        id        path      string  true  "User ID"
// @Param        resumeId  path      string  true  "Résumé ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/resumes/{resumeId}/primary [put]
// @Security     BearerAuth
func (h *ResumeHandler) SetPrimary(c *gin.Context) {
	user, err := h.resumeUC.SetPrimary(c.Request.Context(), middleware.Identity(c), c.Param("id"), c.Param("resumeId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Primary resume updated", user)
}

type DownloadableRequest struct {
	IsDownloadable *bool `json:"is_downloadable" binding:"required"`
}

// SetDownloadable godoc
// @Summary      Toggle whether a résumé can be downloaded
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Param        id        path      string               true  "User ID"
// @Param        resumeId  path      string               true  "Résumé ID"
// @Param        request   body      DownloadableRequest  true  "Flag"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/resumes/{resumeId}/downloadable [patch]
// @Security     BearerAuth
func (h *ResumeHandler) SetDownloadable(c *gin.Context) {
	var req DownloadableRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.resumeUC.SetDownloadable(c.Request.Context(), middleware.Identity(c), c.Param("id"), c.Param("resumeId"), *req.IsDownloadable)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume updated", user)
}
