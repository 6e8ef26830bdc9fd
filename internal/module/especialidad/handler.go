package especialidad

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/admision/internal/domain"
	"github.com/simp-lee/admision/internal/pkg"
)

// Handler handles REST API requests for the especialidad resource.
type Handler struct {
	svc domain.EspecialidadService
}

// NewHandler creates a new Handler with the given service.
func NewHandler(svc domain.EspecialidadService) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /admision/ficheros/especialidades.
func (h *Handler) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// NextCodigo handles GET /admision/ficheros/especialidades/next-codigo.
func (h *Handler) NextCodigo(c *gin.Context) {
	codigo, err := h.svc.NextCodigo(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, NextCodigoResponse{Codigo: codigo})
}

// Create handles POST /admision/ficheros/especialidades.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	e, err := h.svc.Create(c.Request.Context(), req.Descripcion, req.Estado)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, e)
}

// Update handles PUT /admision/ficheros/especialidades/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	e, err := h.svc.Update(c.Request.Context(), id, req.Descripcion, req.Estado)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, e)
}

// Deactivate handles PATCH /admision/ficheros/especialidades/:id/desactivar.
func (h *Handler) Deactivate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	e, err := h.svc.Deactivate(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, e)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
