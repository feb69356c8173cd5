package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/services"
	"github.com/taskhub-dev/taskhub/internal/utils"
)

type CompanyRequest struct {
	Name string `json:"name" form:"name"`
}

type DepartmentRequest struct {
	Name      string `json:"name"`
	CompanyID uint   `json:"companyId"`
}

type RehberGroupRequest struct {
	Name         string `json:"name"`
	DepartmentID uint   `json:"departmentId"`
}

// companyInput reads a company from JSON or from a multipart form carrying
// an optional logo file. The returned func releases the upload.
func companyInput(ctx *gin.Context) (services.CompanyInput, func(), error) {
	if !isMultipart(ctx) {
		var body CompanyRequest
		if err := bindJSON(ctx, &body); err != nil {
			return services.CompanyInput{}, func() {}, err
		}
		return services.CompanyInput{Name: body.Name}, func() {}, nil
	}

	logo, release, err := formUpload(ctx, "logo")
	if err != nil {
		return services.CompanyInput{}, release, err
	}

	return services.CompanyInput{Name: ctx.PostForm("name"), Logo: logo}, release, nil
}

func (h *Handler) ListCompanies(ctx *gin.Context) {
	companies, err := h.svc.Hierarchy.ListCompanies(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, companies)
}

func (h *Handler) CreateCompany(ctx *gin.Context) {
	in, release, err := companyInput(ctx)
	defer release()
	if err != nil {
		respondError(ctx, err)
		return
	}

	company, err := h.svc.Hierarchy.CreateCompany(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, company)
}

func (h *Handler) UpdateCompany(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	in, release, err := companyInput(ctx)
	defer release()
	if err != nil {
		respondError(ctx, err)
		return
	}

	company, err := h.svc.Hierarchy.UpdateCompany(ctx.Request.Context(), id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, company)
}

func (h *Handler) DeleteCompany(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.svc.Hierarchy.DeleteCompany(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Company deleted"})
}

func (h *Handler) ListDepartments(ctx *gin.Context) {
	departments, err := h.svc.Hierarchy.ListDepartments(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, departments)
}

func (h *Handler) CreateDepartment(ctx *gin.Context) {
	var body DepartmentRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	department, err := h.svc.Hierarchy.CreateDepartment(ctx.Request.Context(), services.DepartmentInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, department)
}

func (h *Handler) UpdateDepartment(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body DepartmentRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	department, err := h.svc.Hierarchy.UpdateDepartment(ctx.Request.Context(), id, services.DepartmentInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, department)
}

func (h *Handler) DeleteDepartment(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.svc.Hierarchy.DeleteDepartment(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Department deleted"})
}

func (h *Handler) ListRehberGroups(ctx *gin.Context) {
	groups, err := h.svc.Hierarchy.ListRehberGroups(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, groups)
}

func (h *Handler) CreateRehberGroup(ctx *gin.Context) {
	var body RehberGroupRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	group, err := h.svc.Hierarchy.CreateRehberGroup(ctx.Request.Context(), services.RehberGroupInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

func (h *Handler) UpdateRehberGroup(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	var body RehberGroupRequest
	if err := bindJSON(ctx, &body); err != nil {
		respondError(ctx, err)
		return
	}

	group, err := h.svc.Hierarchy.UpdateRehberGroup(ctx.Request.Context(), id, services.RehberGroupInput(body))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (h *Handler) DeleteRehberGroup(ctx *gin.Context) {
	id, err := utils.QueryID(ctx, "id")
	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := h.svc.Hierarchy.DeleteRehberGroup(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rehber group deleted"})
}

func (h *Handler) RehberStructure(ctx *gin.Context) {
	structure, err := h.svc.Hierarchy.Structure(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, structure)
}
