package especialidad

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/admision/internal/domain"
)

const (
	maxDescripcionLength = 255
	maxCodigoDigits      = 10
	minCodigoDigits      = 3
)

// especialidadService implements domain.EspecialidadService.
type especialidadService struct {
	repo domain.EspecialidadRepository
}

// NewEspecialidadService creates a new service with the given repository.
func NewEspecialidadService(repo domain.EspecialidadRepository) domain.EspecialidadService {
	return &especialidadService{repo: repo}
}

// List returns a page of especialidades.
func (s *especialidadService) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.Especialidad], error) {
	if req.Page < 1 {
		req.Page = 1
	}
	req.PerPage = domain.NormalizePerPage(req.PerPage)
	return s.repo.List(ctx, req)
}

// NextCodigo previews the code the next Create would assign. The preview is
// advisory: Create derives the code again inside its transaction.
func (s *especialidadService) NextCodigo(ctx context.Context) (string, error) {
	return nextCodigo(ctx, s.repo)
}

// Create assigns the next codigo and persists a new especialidad.
// An empty estado defaults to ACTIVO.
func (s *especialidadService) Create(ctx context.Context, descripcion string, estado domain.Status) (*domain.Especialidad, error) {
	descripcion = strings.TrimSpace(descripcion)
	if estado == "" {
		estado = domain.StatusActivo
	}
	if err := validateFields(descripcion, estado); err != nil {
		return nil, err
	}

	e := &domain.Especialidad{Descripcion: descripcion, Estado: estado}
	err := s.repo.WithTx(ctx, func(repo domain.EspecialidadRepository) error {
		codigo, err := nextCodigo(ctx, repo)
		if err != nil {
			return err
		}
		e.Codigo = codigo
		return repo.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "especialidad created",
		slog.Uint64("id", uint64(e.ID)),
		slog.String("codigo", e.Codigo),
	)
	return e, nil
}

// Update changes descripcion and estado; codigo is immutable.
func (s *especialidadService) Update(ctx context.Context, id uint, descripcion string, estado domain.Status) (*domain.Especialidad, error) {
	descripcion = strings.TrimSpace(descripcion)
	if err := validateFields(descripcion, estado); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Descripcion = descripcion
	e.Estado = estado

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Deactivate marks an especialidad INACTIVO. Deactivating an inactive record
// returns it unchanged.
func (s *especialidadService) Deactivate(ctx context.Context, id uint) (*domain.Especialidad, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Estado == domain.StatusInactivo {
		return e, nil
	}

	e.Estado = domain.StatusInactivo
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "especialidad deactivated", slog.Uint64("id", uint64(e.ID)))
	return e, nil
}

// nextCodigo derives max(codigo)+1, zero-padded to three digits.
func nextCodigo(ctx context.Context, repo domain.EspecialidadRepository) (string, error) {
	highest, err := repo.MaxCodigo(ctx)
	if err != nil {
		return "", err
	}
	return formatCodigo(highest + 1)
}

func formatCodigo(n int64) (string, error) {
	codigo := fmt.Sprintf("%0*d", minCodigoDigits, n)
	if len(codigo) > maxCodigoDigits {
		return "", domain.NewAppError(domain.CodeValidation,
			"codigo sequence exhausted: "+strconv.FormatInt(n, 10)+" exceeds "+strconv.Itoa(maxCodigoDigits)+" digits", nil)
	}
	return codigo, nil
}

// validateFields checks the user-editable fields.
func validateFields(descripcion string, estado domain.Status) error {
	if descripcion == "" {
		return domain.NewAppError(domain.CodeValidation, "descripcion is required", nil)
	}
	if utf8.RuneCountInString(descripcion) > maxDescripcionLength {
		return domain.NewAppError(domain.CodeValidation, "descripcion must be at most 255 characters", nil)
	}
	if !estado.Valid() {
		return domain.NewAppError(domain.CodeValidation, "estado must be one of ACTIVO, INACTIVO, SUSPENDIDO", nil)
	}
	return nil
}
