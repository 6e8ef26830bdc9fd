package especialidad

import "github.com/simp-lee/admision/internal/domain"

// CreateRequest represents the input for creating a new especialidad.
// The codigo is always assigned by the server.
type CreateRequest struct {
	Descripcion string        `json:"descripcion" binding:"required,max=255"`
	Estado      domain.Status `json:"estado" binding:"omitempty,oneof=ACTIVO INACTIVO SUSPENDIDO"`
}

// UpdateRequest represents the input for updating an existing especialidad.
type UpdateRequest struct {
	Descripcion string        `json:"descripcion" binding:"required,max=255"`
	Estado      domain.Status `json:"estado" binding:"required,oneof=ACTIVO INACTIVO SUSPENDIDO"`
}

// NextCodigoResponse is the payload of GET /next-codigo.
type NextCodigoResponse struct {
	Codigo string `json:"codigo"`
}
