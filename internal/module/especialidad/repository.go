package especialidad

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/admision/internal/domain"
	"github.com/simp-lee/admision/internal/pkg"
)

// Columns matched by the free-text q parameter.
var searchFields = []string{"codigo", "descripcion"}

// especialidadRepository implements domain.EspecialidadRepository using GORM.
type especialidadRepository struct {
	db *gorm.DB
}

// NewEspecialidadRepository creates a new repository backed by the given GORM database.
func NewEspecialidadRepository(db *gorm.DB) domain.EspecialidadRepository {
	return &especialidadRepository{db: db}
}

// Create inserts a new especialidad.
func (r *especialidadRepository) Create(ctx context.Context, e *domain.Especialidad) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves an especialidad by its primary key.
func (r *especialidadRepository) GetByID(ctx context.Context, id uint) (*domain.Especialidad, error) {
	var e domain.Especialidad
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// MaxCodigo returns the numerically largest codigo, or 0 when the table is empty.
func (r *especialidadRepository) MaxCodigo(ctx context.Context) (int64, error) {
	var highest int64
	err := r.db.WithContext(ctx).
		Model(&domain.Especialidad{}).
		Select("COALESCE(MAX(CAST(codigo AS BIGINT)), 0)").
		Scan(&highest).Error
	if err != nil {
		return 0, mapError(err)
	}
	return highest, nil
}

// List returns one page of especialidades ordered by codigo.
func (r *especialidadRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Especialidad], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Especialidad{}).
		Scopes(pkg.Search(req.Query, searchFields), pkg.WithStatus(req.Status))

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var items []domain.Especialidad
	if err := base.Scopes(pkg.Paginate(req)).
		Order("codigo asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, mapError(err)
	}

	return pkg.BuildPage(items, total, req), nil
}

// Update saves changes to an existing especialidad.
func (r *especialidadRepository) Update(ctx context.Context, e *domain.Especialidad) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// WithTx runs fn inside a transaction; fn's repository shares it.
func (r *especialidadRepository) WithTx(ctx context.Context, fn func(repo domain.EspecialidadRepository) error) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		return fn(&especialidadRepository{db: tx})
	})
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, "especialidad not found", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "codigo already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
