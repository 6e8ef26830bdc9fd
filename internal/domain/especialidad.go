package domain

import "context"

// Status is the lifecycle state of a master-data record.
type Status string

const (
	StatusActivo     Status = "ACTIVO"
	StatusInactivo   Status = "INACTIVO"
	StatusSuspendido Status = "SUSPENDIDO"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusActivo, StatusInactivo, StatusSuspendido}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActivo, StatusInactivo, StatusSuspendido:
		return true
	}
	return false
}

// Especialidad is a medical specialty in the admission master data.
// Codigo is the business key assigned by the server at creation time.
type Especialidad struct {
	BaseModel
	Codigo      string `gorm:"size:10;uniqueIndex;not null" json:"codigo"`
	Descripcion string `gorm:"size:255;not null" json:"descripcion"`
	Estado      Status `gorm:"size:16;not null;index" json:"estado"`
}

// TableName pins the table name; gorm would otherwise pluralize in English.
func (Especialidad) TableName() string {
	return "especialidades"
}

// EspecialidadRepository defines the data access interface for especialidades.
type EspecialidadRepository interface {
	Create(ctx context.Context, e *Especialidad) error
	GetByID(ctx context.Context, id uint) (*Especialidad, error)
	MaxCodigo(ctx context.Context) (int64, error)
	List(ctx context.Context, req PageRequest) (*PageResult[Especialidad], error)
	Update(ctx context.Context, e *Especialidad) error
	// WithTx runs fn against a repository bound to a single transaction.
	WithTx(ctx context.Context, fn func(repo EspecialidadRepository) error) error
}

// EspecialidadService defines the business logic interface for especialidades.
type EspecialidadService interface {
	List(ctx context.Context, req PageRequest) (*PageResult[Especialidad], error)
	NextCodigo(ctx context.Context) (string, error)
	Create(ctx context.Context, descripcion string, estado Status) (*Especialidad, error)
	Update(ctx context.Context, id uint, descripcion string, estado Status) (*Especialidad, error)
	Deactivate(ctx context.Context, id uint) (*Especialidad, error)
}
