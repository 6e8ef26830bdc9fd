// Package console holds the especialidades view-model: a debounced, filtered,
// paginated list coordinated with one NEW/EDIT form and a save/deactivate
// workflow. It talks to the server only through a Gateway.
package console

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/simp-lee/admision/internal/domain"
)

// DefaultSearchDebounce is used when Config.SearchDebounce is zero.
const DefaultSearchDebounce = 350 * time.Millisecond

// Config tunes a ViewModel.
type Config struct {
	// SearchDebounce delays free-text search. Zero means DefaultSearchDebounce.
	SearchDebounce time.Duration
	// PerPage is the initial page size, coerced into {25, 50, 100}.
	PerPage int
}

// State is a copy of everything a front end needs to render the view.
type State struct {
	Filter      Filter
	SearchInput string
	Items       []domain.Especialidad
	Meta        domain.PageMeta
	Loading     bool

	Form          Form
	IsValid       bool
	IsDirty       bool
	CanDeactivate bool

	Notice               *Notice
	Saving               bool
	ConfirmingDeactivate bool
}

// ViewModel owns the state of one especialidades view. All transitions happen
// under mu; gateway calls are made with mu released.
type ViewModel struct {
	gw       Gateway
	log      *slog.Logger
	debounce *Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	filter      Filter
	searchInput string
	lastKey     *filterKey
	seq         uint64
	pending     int
	list        domain.PageResult[domain.Especialidad]
	form        Form
	formGen     uint64
	notice      *Notice
	saving      bool
	confirming  bool
	closed      bool
	onChange    func(State)
}

// New returns a ViewModel in NEW mode and starts the code preview. It does
// not load the list; call Refresh for that.
func New(gw Gateway, cfg Config, log *slog.Logger) (*ViewModel, error) {
	if gw == nil {
		return nil, errors.New("console: gateway is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	delay := cfg.SearchDebounce
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	perPage := cfg.PerPage
	if perPage == 0 {
		perPage = domain.PerPageMedium
	}

	ctx, cancel := context.WithCancel(context.Background())
	vm := &ViewModel{
		gw:     gw,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		filter: defaultFilter(perPage),
		list: domain.PageResult[domain.Especialidad]{
			Items: []domain.Especialidad{},
			Meta:  domain.PageMeta{CurrentPage: 1, PerPage: domain.NormalizePerPage(perPage), LastPage: 1},
		},
	}
	vm.debounce = NewDebouncer(delay, vm.applySearch)

	vm.mu.Lock()
	vm.resetToNewLocked()
	vm.mu.Unlock()
	return vm, nil
}

// OnChange registers fn to be called with a fresh State after each
// transition. fn may be called from several goroutines.
func (vm *ViewModel) OnChange(fn func(State)) {
	vm.mu.Lock()
	vm.onChange = fn
	vm.mu.Unlock()
}

// State returns a deep copy of the current state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.stateLocked()
}

func (vm *ViewModel) stateLocked() State {
	items := make([]domain.Especialidad, len(vm.list.Items))
	copy(items, vm.list.Items)

	var notice *Notice
	if vm.notice != nil {
		n := *vm.notice
		notice = &n
	}

	return State{
		Filter:               vm.filter,
		SearchInput:          vm.searchInput,
		Items:                items,
		Meta:                 vm.list.Meta,
		Loading:              vm.pending > 0,
		Form:                 vm.form.clone(),
		IsValid:              vm.form.IsValid(),
		IsDirty:              vm.form.IsDirty(),
		CanDeactivate:        vm.form.CanDeactivate(),
		Notice:               notice,
		Saving:               vm.saving,
		ConfirmingDeactivate: vm.confirming,
	}
}

func (vm *ViewModel) emit() {
	vm.mu.Lock()
	fn := vm.onChange
	var st State
	if fn != nil {
		st = vm.stateLocked()
	}
	vm.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// Close stops the debouncer, discards pending previews and waits for
// background work to finish.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.closed = true
	vm.mu.Unlock()

	vm.debounce.Stop()
	vm.cancel()
	vm.wg.Wait()
}

// --- query controller ---

// SetSearch records the typed text and schedules the debounced query.
func (vm *ViewModel) SetSearch(text string) {
	vm.mu.Lock()
	vm.searchInput = text
	vm.mu.Unlock()
	vm.emit()
	vm.debounce.Push(text)
}

func (vm *ViewModel) applySearch(text string) {
	vm.mu.Lock()
	if vm.closed || text == vm.filter.Search {
		vm.mu.Unlock()
		return
	}
	vm.filter.Search = text
	vm.wg.Add(1)
	vm.mu.Unlock()

	defer vm.wg.Done()
	vm.runQuery(vm.ctx, false)
}

// SetStatusFilter changes the status filter and queries the list.
func (vm *ViewModel) SetStatusFilter(ctx context.Context, s StatusFilter) {
	vm.mu.Lock()
	vm.filter.Status = s
	vm.mu.Unlock()
	vm.runQuery(ctx, false)
}

// SetPerPage changes the page size (coerced into {25, 50, 100}) and queries the list.
func (vm *ViewModel) SetPerPage(ctx context.Context, n int) {
	vm.mu.Lock()
	vm.filter.PerPage = domain.NormalizePerPage(n)
	vm.mu.Unlock()
	vm.runQuery(ctx, false)
}

// SetPage moves to page n (at least 1) and queries the list.
func (vm *ViewModel) SetPage(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	vm.mu.Lock()
	vm.filter.Page = n
	vm.mu.Unlock()
	vm.runQuery(ctx, false)
}

// Refresh queries the list with the current filter.
func (vm *ViewModel) Refresh(ctx context.Context) {
	vm.runQuery(ctx, false)
}

// evaluateLocked applies the page reset rule and returns the query to issue
// with its sequence number. A filter key that changed while away from page 1
// first moves back to page 1; the query then carries page 1.
func (vm *ViewModel) evaluateLocked(keepNotice bool) (ListQuery, uint64) {
	key := vm.filter.key()
	if vm.lastKey != nil && *vm.lastKey != key && vm.filter.Page != 1 {
		vm.filter.Page = 1
	}
	vm.lastKey = &key

	vm.seq++
	vm.pending++
	if !keepNotice {
		vm.notice = nil
	}
	return vm.filter.query(), vm.seq
}

// runQuery issues one list query. Responses to superseded queries are
// dropped. keepNotice is set when re-synchronizing after a mutation so its
// outcome stays visible.
func (vm *ViewModel) runQuery(ctx context.Context, keepNotice bool) {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return
	}
	q, seq := vm.evaluateLocked(keepNotice)
	vm.mu.Unlock()
	vm.emit()

	page, err := vm.gw.List(ctx, q)

	vm.mu.Lock()
	vm.pending--
	switch {
	case vm.closed:
	case seq != vm.seq:
		vm.log.Debug("stale list response dropped", slog.Uint64("seq", seq), slog.Uint64("latest", vm.seq))
	case err != nil:
		vm.log.Warn("list query failed", slog.Any("error", err))
		vm.notice = errorNotice(remoteMessage(err, msgListFailed))
	default:
		if page.Items == nil {
			page.Items = []domain.Especialidad{}
		}
		vm.list = *page
	}
	vm.mu.Unlock()
	vm.emit()
}

// --- form state machine ---

// ResetToNew empties the form into NEW mode and requests a code preview.
func (vm *ViewModel) ResetToNew() {
	vm.mu.Lock()
	vm.notice = nil
	vm.resetToNewLocked()
	vm.mu.Unlock()
	vm.emit()
}

func (vm *ViewModel) resetToNewLocked() {
	vm.form = newForm()
	vm.confirming = false
	vm.formGen++
	vm.previewLocked()
}

// LoadForEdit puts rec into the form in EDIT mode.
func (vm *ViewModel) LoadForEdit(rec domain.Especialidad) {
	vm.mu.Lock()
	vm.notice = nil
	vm.loadForEditLocked(rec)
	vm.mu.Unlock()
	vm.emit()
}

func (vm *ViewModel) loadForEditLocked(rec domain.Especialidad) {
	vm.form = editForm(rec)
	vm.confirming = false
	vm.formGen++
}

// Select loads the listed record with the given id. It reports false when
// the current page does not contain it.
func (vm *ViewModel) Select(id uint) bool {
	vm.mu.Lock()
	var found *domain.Especialidad
	for i := range vm.list.Items {
		if vm.list.Items[i].ID == id {
			rec := vm.list.Items[i]
			found = &rec
			break
		}
	}
	vm.mu.Unlock()
	if found == nil {
		return false
	}
	vm.LoadForEdit(*found)
	return true
}

// Cancel discards unsaved edits: EDIT returns to its snapshot, NEW starts over.
func (vm *ViewModel) Cancel() {
	vm.mu.Lock()
	vm.notice = nil
	if vm.form.Mode == ModeEdit && vm.form.snapshot != nil {
		vm.form = vm.form.restore()
		vm.confirming = false
	} else {
		vm.resetToNewLocked()
	}
	vm.mu.Unlock()
	vm.emit()
}

// SetCode sets the code field. Clearing it on a NEW form asks for a fresh
// preview.
func (vm *ViewModel) SetCode(code string) {
	vm.mu.Lock()
	vm.form.Code = code
	if vm.form.Mode == ModeNew && strings.TrimSpace(code) == "" {
		vm.form.Code = ""
		vm.formGen++
		vm.previewLocked()
	}
	vm.mu.Unlock()
	vm.emit()
}

// SetDescription sets the description field.
func (vm *ViewModel) SetDescription(desc string) {
	vm.mu.Lock()
	vm.form.Description = desc
	vm.mu.Unlock()
	vm.emit()
}

// SetStatus sets the status field. Unknown statuses are ignored.
func (vm *ViewModel) SetStatus(s domain.Status) bool {
	if !s.Valid() {
		return false
	}
	vm.mu.Lock()
	vm.form.Status = s
	vm.mu.Unlock()
	vm.emit()
	return true
}

// previewLocked fetches the next code for an empty NEW form. The result is
// dropped if the form changed generation or mode, a code was typed, or the
// view-model was closed. Failures are never shown.
func (vm *ViewModel) previewLocked() {
	if vm.closed || vm.form.Mode != ModeNew || strings.TrimSpace(vm.form.Code) != "" {
		return
	}
	gen := vm.formGen
	vm.wg.Add(1)
	go func() {
		defer vm.wg.Done()
		code, err := vm.gw.NextCode(vm.ctx)
		if err != nil {
			vm.log.Debug("next codigo preview failed", slog.Any("error", err))
			return
		}

		vm.mu.Lock()
		apply := !vm.closed && vm.formGen == gen && vm.form.Mode == ModeNew && vm.form.Code == ""
		if apply {
			vm.form.Code = code
		}
		vm.mu.Unlock()
		if apply {
			vm.emit()
		}
	}()
}

// --- save / deactivate workflow ---

// Save creates or updates the record in the form. A call made while another
// mutation is outstanding is dropped.
func (vm *ViewModel) Save(ctx context.Context) {
	vm.mu.Lock()
	if vm.saving || vm.closed {
		vm.mu.Unlock()
		return
	}
	vm.notice = nil
	f := vm.form
	var failure string
	switch {
	case !f.IsValid():
		failure = msgInvalidForm
	case f.Mode == ModeEdit && f.Selected == nil:
		failure = msgNoSelection
	case !f.IsDirty():
		failure = msgNothingToSave
	}
	if failure != "" {
		vm.notice = errorNotice(failure)
		vm.mu.Unlock()
		vm.emit()
		return
	}
	vm.saving = true
	desc := strings.TrimSpace(f.Description)
	vm.mu.Unlock()
	vm.emit()

	var (
		rec *domain.Especialidad
		err error
		msg string
	)
	if f.Mode == ModeNew {
		rec, err = vm.gw.Create(ctx, CreateInput{Descripcion: desc, Estado: f.Status})
		msg = msgCreated
	} else {
		rec, err = vm.gw.Update(ctx, f.Selected.ID, UpdateInput{Descripcion: desc, Estado: f.Status})
		msg = msgUpdated
	}
	if err != nil {
		vm.log.Warn("save failed", slog.String("mode", string(f.Mode)), slog.Any("error", err))
		vm.mu.Lock()
		vm.notice = errorNotice(remoteMessage(err, msgSaveFailed))
		vm.saving = false
		vm.mu.Unlock()
		vm.emit()
		return
	}

	vm.mu.Lock()
	vm.notice = successNotice(msg)
	if f.Mode == ModeNew {
		vm.filter.Page = 1
	}
	vm.mu.Unlock()

	vm.resync(ctx, *rec)
}

// RequestDeactivate opens the confirmation prompt for the selected record.
func (vm *ViewModel) RequestDeactivate() {
	vm.mu.Lock()
	switch {
	case vm.form.Selected == nil:
		vm.notice = errorNotice(msgNoSelection)
	case vm.form.Selected.Estado == domain.StatusInactivo:
		vm.mu.Unlock()
		return
	default:
		vm.confirming = true
	}
	vm.mu.Unlock()
	vm.emit()
}

// CancelDeactivate closes the confirmation prompt.
func (vm *ViewModel) CancelDeactivate() {
	vm.mu.Lock()
	vm.confirming = false
	vm.mu.Unlock()
	vm.emit()
}

// ConfirmDeactivate deactivates the selected record. It shares the saving
// guard with Save.
func (vm *ViewModel) ConfirmDeactivate(ctx context.Context) {
	vm.mu.Lock()
	if vm.saving || vm.closed || !vm.confirming {
		vm.mu.Unlock()
		return
	}
	if vm.form.Selected == nil {
		vm.confirming = false
		vm.notice = errorNotice(msgNoSelection)
		vm.mu.Unlock()
		vm.emit()
		return
	}
	vm.notice = nil
	vm.saving = true
	id := vm.form.Selected.ID
	vm.mu.Unlock()
	vm.emit()

	rec, err := vm.gw.Deactivate(ctx, id)

	vm.mu.Lock()
	vm.confirming = false
	if err != nil {
		vm.log.Warn("deactivate failed", slog.Uint64("id", uint64(id)), slog.Any("error", err))
		vm.notice = errorNotice(remoteMessage(err, msgDeactivateFailed))
		vm.saving = false
		vm.mu.Unlock()
		vm.emit()
		return
	}
	vm.notice = successNotice(msgDeactivated)
	vm.mu.Unlock()

	vm.resync(ctx, *rec)
}

// resync re-runs the list query, then loads rec for editing and releases the
// saving guard.
func (vm *ViewModel) resync(ctx context.Context, rec domain.Especialidad) {
	vm.runQuery(ctx, true)

	vm.mu.Lock()
	vm.loadForEditLocked(rec)
	vm.saving = false
	vm.mu.Unlock()
	vm.emit()
}
