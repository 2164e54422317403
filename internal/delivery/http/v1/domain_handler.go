package v1

import (
	"fmt"
	"net/http"
	"time"

	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DomainHandler struct {
	domainUC domain.WorkDomainUsecase
}

func NewDomainHandler(public, protected *gin.RouterGroup, domainUC domain.WorkDomainUsecase) {
	handler := &DomainHandler{domainUC: domainUC}

	public.GET("/domains", handler.Catalog)

	domains := protected.Group("/domains")
	{
		domains.GET("/export", handler.Export)
		domains.GET("/:name/members", handler.Members)
	}
}

// Catalog godoc
// @Summary      Work domain catalog
// @Description  Every catalog name with its member count
// @Tags         domains
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.DomainSummary}
// @Router       /domains [get]
func (h *DomainHandler) Catalog(c *gin.Context) {
	catalog, err := h.domainUC.Catalog(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Work domains", catalog)
}

// Members godoc
// @Summary      Members of a work domain
// @Tags         domains
// @Produce      json
// @Param        name  path      string  true  "Catalog name"
// @Success      200  {object}  response.Response{data=[]string}
// @Failure      400  {object}  response.Response
// @Router       /domains/{name}/members [get]
// @Security     BearerAuth
func (h *DomainHandler) Members(c *gin.Context) {
	members, err := h.domainUC.Members(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Domain members", members)
}

// Export godoc
// @Summary      Export the domain registry
// @Tags         domains
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  binary
// @Router       /domains/export [get]
// @Security     BearerAuth
func (h *DomainHandler) Export(c *gin.Context) {
	data, err := h.domainUC.Export(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("work-domains-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
