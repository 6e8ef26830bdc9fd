package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/admision/internal/domain"
)

func TestRunREPL_CreateEditDeactivate(t *testing.T) {
	g := newFakeGateway(rec(1, "001", "Cardiología", domain.StatusActivo))
	vm := newTestVM(t, g, Config{})
	waitPreview(t, vm, "004")

	input := strings.Join([]string{
		"help",
		"list",
		"show",
		"desc Pediatría",
		"save",
		"edit 1",
		"estado suspendido",
		"save",
		"deactivate",
		"confirm",
		"status inactivo",
		"bogus",
		"exit",
		"list",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, RunREPL(context.Background(), vm, strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "Commands:")
	assert.Contains(t, text, "Cardiología")
	assert.Contains(t, text, "[SUCCESS] record created")
	assert.Contains(t, text, "[SUCCESS] record updated")
	assert.Contains(t, text, "deactivate 001? (confirm/abort) > ")
	assert.Contains(t, text, "[SUCCESS] record deactivated")
	assert.Contains(t, text, "unknown command: bogus")

	assert.Equal(t, 1, g.createCount())
	assert.Equal(t, []uint{1}, g.updateCalls)
	assert.Equal(t, []uint{1}, g.deactivateCalls)
	assert.Equal(t, domain.StatusInactivo, g.lastList().Status)
}

func TestRunREPL_InputErrors(t *testing.T) {
	g := newFakeGateway()
	vm := newTestVM(t, g, Config{})

	input := strings.Join([]string{
		"page x",
		"perpage many",
		"status borrado",
		"estado borrado",
		"edit 42",
		"prev",
		"",
	}, "\n")

	var out bytes.Buffer
	require.NoError(t, RunREPL(context.Background(), vm, strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "page must be a number")
	assert.Contains(t, text, "perpage must be a number")
	assert.Contains(t, text, "unknown status: borrado")
	assert.Contains(t, text, "unknown estado: borrado")
	assert.Contains(t, text, "no listed record with id 42")
	assert.Contains(t, text, "already on the first page")
	assert.Zero(t, g.listCount())
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	vm := newTestVM(t, newFakeGateway(), Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, RunREPL(ctx, vm, strings.NewReader("list\n"), &out))
	assert.Empty(t, out.String())
}
