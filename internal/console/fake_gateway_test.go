package console

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/simp-lee/admision/internal/domain"
)

// remoteErr mimics a gateway error that carries a server message.
type remoteErr struct {
	kind, msg string
}

func (e remoteErr) Error() string   { return e.kind + ": " + e.msg }
func (e remoteErr) Kind() string    { return e.kind }
func (e remoteErr) Message() string { return e.msg }

// fakeGateway is an in-memory Gateway. Calls are recorded; gates let a test
// hold a call open until it is released.
type fakeGateway struct {
	mu      sync.Mutex
	records map[uint]domain.Especialidad
	nextID  uint

	listCalls       []ListQuery
	nextCodeCalls   int
	createCalls     []CreateInput
	updateCalls     []uint
	deactivateCalls []uint

	listErr       error
	nextCodeErr   error
	createErr     error
	updateErr     error
	deactivateErr error
	nextCode      string

	// blockStatus holds List calls for that status until listRelease is closed.
	blockStatus domain.Status
	listEntered chan struct{}
	listRelease chan struct{}

	// nextCodeRelease, when set, holds NextCode until closed or ctx is done.
	nextCodeRelease chan struct{}

	// createRelease, when set, holds Create until closed.
	createEntered chan struct{}
	createRelease chan struct{}
}

func newFakeGateway(seed ...domain.Especialidad) *fakeGateway {
	g := &fakeGateway{records: map[uint]domain.Especialidad{}, nextCode: "004"}
	for _, r := range seed {
		g.records[r.ID] = r
		if r.ID > g.nextID {
			g.nextID = r.ID
		}
	}
	return g
}

func rec(id uint, codigo, desc string, estado domain.Status) domain.Especialidad {
	return domain.Especialidad{
		BaseModel:   domain.BaseModel{ID: id},
		Codigo:      codigo,
		Descripcion: desc,
		Estado:      estado,
	}
}

func (g *fakeGateway) List(ctx context.Context, q ListQuery) (*domain.PageResult[domain.Especialidad], error) {
	g.mu.Lock()
	g.listCalls = append(g.listCalls, q)
	block := g.blockStatus != "" && q.Status == g.blockStatus
	entered, release := g.listEntered, g.listRelease
	g.mu.Unlock()

	if block {
		if entered != nil {
			close(entered)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}

	var matched []domain.Especialidad
	for _, r := range g.records {
		if q.Status != "" && r.Estado != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Codigo+" "+r.Descripcion), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Codigo < matched[j].Codigo })

	total := len(matched)
	start := (q.Page - 1) * q.PerPage
	if start > total {
		start = total
	}
	end := start + q.PerPage
	if end > total {
		end = total
	}
	last := 1
	if total > 0 {
		last = (total + q.PerPage - 1) / q.PerPage
	}

	items := append([]domain.Especialidad{}, matched[start:end]...)
	return &domain.PageResult[domain.Especialidad]{
		Items: items,
		Meta:  domain.PageMeta{CurrentPage: q.Page, PerPage: q.PerPage, Total: int64(total), LastPage: last},
	}, nil
}

func (g *fakeGateway) NextCode(ctx context.Context) (string, error) {
	g.mu.Lock()
	g.nextCodeCalls++
	release := g.nextCodeRelease
	g.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextCode, g.nextCodeErr
}

func (g *fakeGateway) Create(ctx context.Context, in CreateInput) (*domain.Especialidad, error) {
	g.mu.Lock()
	g.createCalls = append(g.createCalls, in)
	entered, release := g.createEntered, g.createRelease
	g.mu.Unlock()

	if release != nil {
		if entered != nil {
			close(entered)
		}
		<-release
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	r := rec(g.nextID, fmt.Sprintf("%03d", g.nextID), in.Descripcion, in.Estado)
	g.records[r.ID] = r
	return &r, nil
}

func (g *fakeGateway) Update(ctx context.Context, id uint, in UpdateInput) (*domain.Especialidad, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updateCalls = append(g.updateCalls, id)
	if g.updateErr != nil {
		return nil, g.updateErr
	}
	r, ok := g.records[id]
	if !ok {
		return nil, remoteErr{kind: "not_found", msg: "especialidad not found"}
	}
	r.Descripcion = in.Descripcion
	r.Estado = in.Estado
	g.records[id] = r
	return &r, nil
}

func (g *fakeGateway) Deactivate(ctx context.Context, id uint) (*domain.Especialidad, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deactivateCalls = append(g.deactivateCalls, id)
	if g.deactivateErr != nil {
		return nil, g.deactivateErr
	}
	r, ok := g.records[id]
	if !ok {
		return nil, remoteErr{kind: "not_found", msg: "especialidad not found"}
	}
	r.Estado = domain.StatusInactivo
	g.records[id] = r
	return &r, nil
}

func (g *fakeGateway) lastList() ListQuery {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.listCalls) == 0 {
		return ListQuery{}
	}
	return g.listCalls[len(g.listCalls)-1]
}

func (g *fakeGateway) listCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.listCalls)
}

func (g *fakeGateway) createCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.createCalls)
}

func (g *fakeGateway) nextCodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextCodeCalls
}
