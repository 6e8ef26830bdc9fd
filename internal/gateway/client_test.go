package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/admision/internal/console"
	"github.com/simp-lee/admision/internal/domain"
)

type capturedRequest struct {
	method string
	path   string
	query  map[string]string
	header http.Header
	body   map[string]any
}

// newTestServer answers every request with status and body, recording the
// last request it saw.
func newTestServer(t *testing.T, status int, body string) (*Client, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.header = r.Header.Clone()
		got.query = map[string]string{}
		for k := range r.URL.Query() {
			got.query[k] = r.URL.Query().Get(k)
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &got.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", 0)
	require.NoError(t, err)
	return c, got
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://example.com", "http://"} {
		_, err := New(raw, 0)
		assert.Error(t, err, "base url %q", raw)
	}
}

func TestClient_List(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{
		"code": 200, "message": "success",
		"data": [{"id":1,"codigo":"100","descripcion":"Cardiología","estado":"ACTIVO"}],
		"meta": {"current_page":1,"per_page":50,"total":1,"last_page":1}
	}`)

	page, err := c.List(context.Background(), console.ListQuery{
		Page: 1, PerPage: 50, Search: "  cardio ", Status: domain.StatusActivo,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, BasePath, got.path)
	assert.Equal(t, map[string]string{"page": "1", "per_page": "50", "q": "cardio", "status": "ACTIVO"}, got.query)
	assert.Equal(t, "application/json", got.header.Get("Accept"))
	_, err = uuid.Parse(got.header.Get("X-Request-ID"))
	assert.NoError(t, err, "X-Request-ID should be a uuid")

	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.Especialidad{
		BaseModel:   domain.BaseModel{ID: 1},
		Codigo:      "100",
		Descripcion: "Cardiología",
		Estado:      domain.StatusActivo,
	}, page.Items[0])
	assert.Equal(t, domain.PageMeta{CurrentPage: 1, PerPage: 50, Total: 1, LastPage: 1}, page.Meta)
}

func TestClient_List_OmitsEmptyFilters(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{"data":null,"meta":{"current_page":2,"per_page":25,"total":0,"last_page":1}}`)

	page, err := c.List(context.Background(), console.ListQuery{Page: 2, PerPage: 25, Search: "   "})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"page": "2", "per_page": "25"}, got.query)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestClient_NextCode_Coercion(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"data":{"codigo":" 004 "}}`, "004"},
		{"number", `{"data":{"codigo":12}}`, "12"},
		{"missing", `{"data":{}}`, ""},
		{"null", `{"data":{"codigo":null}}`, ""},
		{"no data", `{}`, ""},
		{"unexpected type", `{"data":{"codigo":true}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, got := newTestServer(t, http.StatusOK, tt.body)
			code, err := c.NextCode(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, BasePath+"/next-codigo", got.path)
		})
	}
}

func TestClient_Create(t *testing.T) {
	c, got := newTestServer(t, http.StatusCreated, `{"data":{"id":7,"codigo":"007","descripcion":"Pediatría","estado":"ACTIVO"}}`)

	rec, err := c.Create(context.Background(), console.CreateInput{Descripcion: "Pediatría", Estado: domain.StatusActivo})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, BasePath+"/", got.path)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, map[string]any{"descripcion": "Pediatría", "estado": "ACTIVO"}, got.body)
	assert.Equal(t, uint(7), rec.ID)
	assert.Equal(t, "007", rec.Codigo)
}

func TestClient_Create_OmitsEmptyEstado(t *testing.T) {
	c, got := newTestServer(t, http.StatusCreated, `{"data":{"id":1,"codigo":"001","descripcion":"X","estado":"ACTIVO"}}`)

	_, err := c.Create(context.Background(), console.CreateInput{Descripcion: "X"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"descripcion": "X"}, got.body)
}

func TestClient_UpdateAndDeactivate(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `{"data":{"id":3,"codigo":"003","descripcion":"Neurología","estado":"INACTIVO"}}`)

	_, err := c.Update(context.Background(), 3, console.UpdateInput{Descripcion: "Neurología", Estado: domain.StatusSuspendido})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, BasePath+"/3", got.path)
	assert.Equal(t, map[string]any{"descripcion": "Neurología", "estado": "SUSPENDIDO"}, got.body)

	rec, err := c.Deactivate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, BasePath+"/3/desactivar", got.path)
	assert.Equal(t, domain.StatusInactivo, rec.Estado)
}

func TestClient_RecordMissingIsDecodeError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"data":null}`)

	_, err := c.Deactivate(context.Background(), 1)
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, KindDecode, gwErr.Kind())
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    string
		wantMessage string
	}{
		{"recognized shape", http.StatusConflict, `{"code":409,"kind":"already_exists","message":"codigo already exists"}`, "already_exists", "codigo already exists"},
		{"validation shape", http.StatusBadRequest, `{"code":400,"kind":"validation","message":"descripcion is required","errors":{"descripcion":"is required"}}`, "validation", "descripcion is required"},
		{"message without kind", http.StatusInternalServerError, `{"message":"boom"}`, KindHTTP, ""},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, KindHTTP, ""},
		{"empty body", http.StatusServiceUnavailable, ``, KindHTTP, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, tt.status, tt.body)

			_, err := c.Update(context.Background(), 1, console.UpdateInput{Descripcion: "x", Estado: domain.StatusActivo})
			var gwErr *Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, tt.status, gwErr.Status)
			assert.Equal(t, tt.wantKind, gwErr.Kind())
			assert.Equal(t, tt.wantMessage, gwErr.Message())
			assert.NotEmpty(t, gwErr.Error())

			var remote console.RemoteError
			assert.ErrorAs(t, err, &remote)
		})
	}
}

func TestClient_UndecodableSuccessBody(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"data": [`)

	_, err := c.List(context.Background(), console.ListQuery{Page: 1, PerPage: 25})
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, KindDecode, gwErr.Kind())
	assert.Empty(t, gwErr.Message())
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, time.Second)
	require.NoError(t, err)

	_, err = c.NextCode(context.Background())
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, KindNetwork, gwErr.Kind())
	assert.Zero(t, gwErr.Status)
	assert.Empty(t, gwErr.Message())
}

func TestClient_HonoursContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := New(srv.URL, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = c.List(ctx, console.ListQuery{Page: 1, PerPage: 25})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
