package console

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/admision/internal/domain"
)

// Mode is the form mode.
type Mode string

const (
	ModeNew  Mode = "NEW"
	ModeEdit Mode = "EDIT"
)

var codigoPattern = regexp.MustCompile(`^\d{3,10}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("codigo", func(fl validator.FieldLevel) bool {
		return codigoPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// newFormInput and editFormInput hold trimmed field values. In EDIT mode the
// code is only checked for presence and length: it is never sent.
type newFormInput struct {
	Code        string `validate:"codigo"`
	Description string `validate:"required,max=255"`
}

type editFormInput struct {
	Code        string `validate:"required,max=10"`
	Description string `validate:"required,max=255"`
}

type formFields struct {
	Code        string
	Description string
	Status      domain.Status
}

// Form is the editable record. Selected and the snapshot are set only in
// EDIT mode; the snapshot holds the fields as last loaded or saved.
type Form struct {
	Mode        Mode
	Selected    *domain.Especialidad
	Code        string
	Description string
	Status      domain.Status

	snapshot *formFields
}

func newForm() Form {
	return Form{Mode: ModeNew, Status: domain.StatusActivo}
}

func editForm(rec domain.Especialidad) Form {
	fields := formFields{Code: rec.Codigo, Description: rec.Descripcion, Status: rec.Estado}
	return Form{
		Mode:        ModeEdit,
		Selected:    &rec,
		Code:        fields.Code,
		Description: fields.Description,
		Status:      fields.Status,
		snapshot:    &fields,
	}
}

// restore returns the form as it was at its snapshot.
func (f Form) restore() Form {
	if f.Mode != ModeEdit || f.snapshot == nil {
		return newForm()
	}
	out := f
	out.Code = f.snapshot.Code
	out.Description = f.snapshot.Description
	out.Status = f.snapshot.Status
	return out
}

func (f Form) clone() Form {
	out := f
	if f.Selected != nil {
		rec := *f.Selected
		out.Selected = &rec
	}
	if f.snapshot != nil {
		snap := *f.snapshot
		out.snapshot = &snap
	}
	return out
}

// IsValid reports whether the form may be submitted.
func (f Form) IsValid() bool {
	code := strings.TrimSpace(f.Code)
	desc := strings.TrimSpace(f.Description)
	if f.Mode == ModeEdit {
		return validate.Struct(editFormInput{Code: code, Description: desc}) == nil
	}
	return validate.Struct(newFormInput{Code: code, Description: desc}) == nil
}

// IsDirty reports whether there is something to submit. A valid NEW form is
// always dirty; an EDIT form is dirty when description or status differ from
// the snapshot. The code never counts.
func (f Form) IsDirty() bool {
	if f.Mode == ModeNew {
		return f.IsValid()
	}
	if f.snapshot == nil {
		return false
	}
	return strings.TrimSpace(f.Description) != strings.TrimSpace(f.snapshot.Description) ||
		f.Status != f.snapshot.Status
}

// CanDeactivate reports whether a selected record can still be deactivated.
func (f Form) CanDeactivate() bool {
	return f.Selected != nil && f.Selected.Estado != domain.StatusInactivo
}
