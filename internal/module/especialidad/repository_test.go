package especialidad

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/admision/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the especialidades table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.Especialidad{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, repo domain.EspecialidadRepository, rows ...domain.Especialidad) []domain.Especialidad {
	t.Helper()
	for i := range rows {
		if err := repo.Create(context.Background(), &rows[i]); err != nil {
			t.Fatalf("seed %q: %v", rows[i].Codigo, err)
		}
	}
	return rows
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	ctx := context.Background()

	e := &domain.Especialidad{Codigo: "100", Descripcion: "Cardiología", Estado: domain.StatusActivo}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Codigo != "100" || got.Descripcion != "Cardiología" || got.Estado != domain.StatusActivo {
		t.Errorf("got %+v; want codigo=100 descripcion=Cardiología estado=ACTIVO", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreate_DuplicateCodigo(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	seed(t, repo, domain.Especialidad{Codigo: "100", Descripcion: "A", Estado: domain.StatusActivo})

	err := repo.Create(context.Background(), &domain.Especialidad{Codigo: "100", Descripcion: "B", Estado: domain.StatusActivo})
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected already exists, got %v", err)
	}
}

func TestMaxCodigo(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	ctx := context.Background()

	got, err := repo.MaxCodigo(ctx)
	if err != nil {
		t.Fatalf("MaxCodigo on empty table: %v", err)
	}
	if got != 0 {
		t.Errorf("MaxCodigo() = %d; want 0", got)
	}

	// Numeric, not lexicographic: "1000" > "999" > "099".
	seed(t, repo,
		domain.Especialidad{Codigo: "099", Descripcion: "A", Estado: domain.StatusActivo},
		domain.Especialidad{Codigo: "1000", Descripcion: "B", Estado: domain.StatusActivo},
		domain.Especialidad{Codigo: "999", Descripcion: "C", Estado: domain.StatusActivo},
	)
	got, err = repo.MaxCodigo(ctx)
	if err != nil {
		t.Fatalf("MaxCodigo: %v", err)
	}
	if got != 1000 {
		t.Errorf("MaxCodigo() = %d; want 1000", got)
	}
}

func TestUpdate(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	ctx := context.Background()
	rows := seed(t, repo, domain.Especialidad{Codigo: "100", Descripcion: "Cardio", Estado: domain.StatusActivo})

	e := rows[0]
	e.Descripcion = "Cardiología"
	e.Estado = domain.StatusSuspendido
	if err := repo.Update(ctx, &e); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := repo.GetByID(ctx, e.ID)
	if got.Descripcion != "Cardiología" || got.Estado != domain.StatusSuspendido {
		t.Errorf("got %+v; want updated fields", got)
	}
}

func TestList_PaginationAndOrder(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	for i := 30; i >= 1; i-- {
		seed(t, repo, domain.Especialidad{
			Codigo:      fmt.Sprintf("%03d", i),
			Descripcion: fmt.Sprintf("Especialidad %d", i),
			Estado:      domain.StatusActivo,
		})
	}

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 2, PerPage: 25})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Meta.Total != 30 {
		t.Errorf("Total=%d; want 30", result.Meta.Total)
	}
	if result.Meta.LastPage != 2 {
		t.Errorf("LastPage=%d; want 2", result.Meta.LastPage)
	}
	if len(result.Items) != 5 {
		t.Fatalf("Items count=%d; want 5", len(result.Items))
	}
	if result.Items[0].Codigo != "026" {
		t.Errorf("first item on page 2 = %q; want 026", result.Items[0].Codigo)
	}
}

func TestList_SearchAndStatus(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	seed(t, repo,
		domain.Especialidad{Codigo: "100", Descripcion: "Cardiología", Estado: domain.StatusActivo},
		domain.Especialidad{Codigo: "200", Descripcion: "Cirugía cardiovascular", Estado: domain.StatusInactivo},
		domain.Especialidad{Codigo: "300", Descripcion: "Pediatría", Estado: domain.StatusActivo},
		domain.Especialidad{Codigo: "410", Descripcion: "50% Dermatología", Estado: domain.StatusSuspendido},
	)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     domain.PageRequest
		codigos []string
	}{
		{"by descripcion", domain.PageRequest{Page: 1, PerPage: 25, Query: "cardio"}, []string{"100", "200"}},
		{"by codigo", domain.PageRequest{Page: 1, PerPage: 25, Query: "30"}, []string{"300"}},
		{"status only", domain.PageRequest{Page: 1, PerPage: 25, Status: domain.StatusActivo}, []string{"100", "300"}},
		{"search and status", domain.PageRequest{Page: 1, PerPage: 25, Query: "cardio", Status: domain.StatusInactivo}, []string{"200"}},
		{"percent is literal", domain.PageRequest{Page: 1, PerPage: 25, Query: "0%"}, []string{"410"}},
		{"no match", domain.PageRequest{Page: 1, PerPage: 25, Query: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := repo.List(ctx, tt.req)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(result.Items) != len(tt.codigos) {
				t.Fatalf("got %d items %+v; want %v", len(result.Items), result.Items, tt.codigos)
			}
			for i, want := range tt.codigos {
				if result.Items[i].Codigo != want {
					t.Errorf("item %d codigo = %q; want %q", i, result.Items[i].Codigo, want)
				}
			}
		})
	}
}

func TestList_Empty(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 1, PerPage: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %+v", result.Items)
	}
	if result.Meta.LastPage != 1 {
		t.Errorf("LastPage=%d; want 1", result.Meta.LastPage)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repo := NewEspecialidadRepository(setupTestDB(t))
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(tx domain.EspecialidadRepository) error {
		if err := tx.Create(ctx, &domain.Especialidad{Codigo: "001", Descripcion: "A", Estado: domain.StatusActivo}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	highest, err := repo.MaxCodigo(ctx)
	if err != nil {
		t.Fatalf("MaxCodigo: %v", err)
	}
	if highest != 0 {
		t.Errorf("expected rollback to leave table empty, MaxCodigo=%d", highest)
	}
}

func TestMapError(t *testing.T) {
	if mapError(nil) != nil {
		t.Error("mapError(nil) should be nil")
	}
	if !domain.IsNotFound(mapError(gorm.ErrRecordNotFound)) {
		t.Error("record not found should map to not found")
	}
	if !domain.IsAlreadyExists(mapError(errors.New("UNIQUE constraint failed: especialidades.codigo"))) {
		t.Error("unique violation should map to already exists")
	}
	if !domain.IsInternal(mapError(errors.New("disk I/O error"))) {
		t.Error("unknown error should map to internal")
	}
	v := domain.NewAppError(domain.CodeValidation, "x", nil)
	if mapError(v) != v {
		t.Error("AppError should pass through unchanged")
	}
}
