package console

import (
	"context"
	"errors"
	"strings"

	"github.com/simp-lee/admision/internal/domain"
)

// ListQuery is one list request as issued by the query controller.
// An empty Search or Status is omitted from the request.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	Status  domain.Status
}

// CreateInput is the payload of a create call. The server assigns the codigo.
type CreateInput struct {
	Descripcion string
	Estado      domain.Status
}

// UpdateInput is the payload of an update call. The codigo is never sent.
type UpdateInput struct {
	Descripcion string
	Estado      domain.Status
}

// Gateway is the remote data source of the view-model.
type Gateway interface {
	List(ctx context.Context, q ListQuery) (*domain.PageResult[domain.Especialidad], error)
	NextCode(ctx context.Context) (string, error)
	Create(ctx context.Context, in CreateInput) (*domain.Especialidad, error)
	Update(ctx context.Context, id uint, in UpdateInput) (*domain.Especialidad, error)
	Deactivate(ctx context.Context, id uint) (*domain.Especialidad, error)
}

// RemoteError is the error shape whose message is shown to the user as is.
type RemoteError interface {
	error
	Kind() string
	Message() string
}

// remoteMessage returns the message carried by err, or fallback when err
// does not expose one.
func remoteMessage(err error, fallback string) string {
	var re RemoteError
	if errors.As(err, &re) {
		if msg := strings.TrimSpace(re.Message()); msg != "" {
			return msg
		}
	}
	return fallback
}
