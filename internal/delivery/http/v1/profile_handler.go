package v1

import (
	"encoding/json"
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
	domainUC  domain.WorkDomainUsecase
}

func NewProfileHandler(protected *gin.RouterGroup, profileUC domain.ProfileUsecase, domainUC domain.WorkDomainUsecase) {
	handler := &ProfileHandler{profileUC: profileUC, domainUC: domainUC}

	users := protected.Group("/users/:id")
	{
		users.GET("", handler.Get)
		users.PATCH("/profile", handler.Update)
		users.PUT("/domain", handler.SetDomain)
	}
}

// Get godoc
// @Summary      Get a profile
// @Tags         profile
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.profileUC.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", user)
}

// Update godoc
// @Summary      Update profile fields
// @Description  Partial update. Only the listed keys are accepted; lists and objects replace the stored value. work_domain null clears the domain.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "User ID"
// @Param        request  body      map[string]interface{}  true  "Fields to update"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /users/{id}/profile [patch]
// @Security     BearerAuth
func (h *ProfileHandler) Update(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.Error(apperror.BadRequest("Request body must be a JSON object"))
		return
	}

	user, err := h.profileUC.ApplyUpdate(c.Request.Context(), middleware.Identity(c), c.Param("id"), fields)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated", user)
}

type SetDomainRequest struct {
	WorkDomain string `json:"work_domain" binding:"required"`
}

// SetDomain godoc
// @Summary      Set work domain
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        id       path      string            true  "User ID"
// @Param        request  body      SetDomainRequest  true  "Catalog name"
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /users/{id}/domain [put]
// @Security     BearerAuth
func (h *ProfileHandler) SetDomain(c *gin.Context) {
	var req SetDomainRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.domainUC.SetUserDomain(c.Request.Context(), middleware.Identity(c), c.Param("id"), req.WorkDomain)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work domain updated", user)
}
