package especialidad

import "github.com/gin-gonic/gin"

// BasePath is where the especialidades resource is mounted.
const BasePath = "/admision/ficheros/especialidades"

// Module implements the app.Module interface for the especialidad domain.
type Module struct {
	handler *Handler
}

// NewModule creates a new Module with the given handler.
// Panics if h is nil.
func NewModule(h *Handler) *Module {
	if h == nil {
		panic("especialidad.NewModule: handler must not be nil")
	}
	return &Module{handler: h}
}

// RegisterRoutes registers the especialidad API routes.
func (m *Module) RegisterRoutes(r gin.IRouter) {
	g := r.Group(BasePath)
	g.GET("", m.handler.List)
	g.GET("/next-codigo", m.handler.NextCodigo)
	g.POST("", m.handler.Create)
	g.POST("/", m.handler.Create)
	g.PUT("/:id", m.handler.Update)
	g.PATCH("/:id/desactivar", m.handler.Deactivate)
}
