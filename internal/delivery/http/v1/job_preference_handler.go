package v1

import (
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type JobPreferenceHandler struct {
	prefUC domain.JobPreferenceUsecase
}

func NewJobPreferenceHandler(protected *gin.RouterGroup, prefUC domain.JobPreferenceUsecase) {
	handler := &JobPreferenceHandler{prefUC: prefUC}

	users := protected.Group("/users/:id")
	{
		users.POST("/saved-jobs", handler.SaveJob)
		users.DELETE("/saved-jobs/:jobId", handler.UnsaveJob)
		users.POST("/not-interested", handler.MarkNotInterested)
		users.DELETE("/not-interested", handler.UnmarkNotInterested)
		users.POST("/applied-jobs", handler.RecordApplication)
	}
}

type JobRequest struct {
	JobID string `json:"job_id" binding:"required"`
}

// SaveJob godoc
// @Summary      Save a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "User ID"
// @Param        request  body      JobRequest  true  "Job"
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/{id}/saved-jobs [post]
// @Security     BearerAuth
func (h *JobPreferenceHandler) SaveJob(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.prefUC.SaveJob(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.JobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job saved", user)
}

// UnsaveJob godoc
// @Summary      Remove a saved job
// @Tags         jobs
// @Produce      json
// @Param        id     path      string  true  "User ID"
// @Param        jobId  path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/{id}/saved-jobs/{jobId} [delete]
// @Security     BearerAuth
func (h *JobPreferenceHandler) UnsaveJob(c *gin.Context) {
	user, err := h.prefUC.UnsaveJob(c.Request.Context(), middleware.Identity(c), c.Param("id"), c.Param("jobId"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Job removed", user)
}

// MarkNotInterested godoc
// @Summary      Hide a job category
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "User ID"
// @Param        request  body      domain.NotInterestedCategory  true  "Category"
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/{id}/not-interested [post]
// @Security     BearerAuth
func (h *JobPreferenceHandler) MarkNotInterested(c *gin.Context) {
	var req domain.NotInterestedCategory
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.prefUC.MarkNotInterested(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Category hidden", user)
}

// UnmarkNotInterested godoc
// @Summary      Show a hidden job category again
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "User ID"
// @Param        request  body      domain.NotInterestedCategory  true  "Category"
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/{id}/not-interested [delete]
// @Security     BearerAuth
func (h *JobPreferenceHandler) UnmarkNotInterested(c *gin.Context) {
	var req domain.NotInterestedCategory
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.prefUC.UnmarkNotInterested(c.Request.Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Category restored", user)
}

// RecordApplication godoc
// @Summary      Record a job application
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "User ID"
// @Param        request  body      JobRequest  true  "Job"
// @Success      200  {object}  response.Response{data=domain.User}
// @Router       /users/{id}/applied-jobs [post]
// @Security     BearerAuth
func (h *JobPreferenceHandler) RecordApplication(c *gin.Context) {
	var req JobRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.prefUC.RecordApplication(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.JobID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Application recorded", user)
}
