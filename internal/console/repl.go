package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/simp-lee/admision/internal/domain"
)

const helpText = `Commands:
  list | l               reload the current page
  search <text>          filter by codigo or descripcion (empty clears)
  status <ALL|ACTIVO|INACTIVO|SUSPENDIDO>
  page <n> | next | prev
  perpage <25|50|100>
  new                    start a new record
  edit <id>              load a listed record
  code <text>            set the code field
  desc <text>            set the description field
  estado <ACTIVO|INACTIVO|SUSPENDIDO>
  save                   create or update
  cancel                 discard unsaved changes
  deactivate             ask to deactivate the selected record
  confirm | abort        answer the deactivation prompt
  show                   print list and form
  exit | quit`

// RunREPL reads commands from in and drives vm until EOF, exit or ctx is done.
func RunREPL(ctx context.Context, vm *ViewModel, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, prompt(vm.State()))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}

		switch strings.ToLower(cmd) {
		case "help", "?":
			fmt.Fprintln(out, helpText)
			continue
		case "exit", "quit":
			return nil
		case "l", "list":
			vm.Refresh(ctx)
		case "search":
			vm.SetSearch(arg)
			fmt.Fprintln(out, "search scheduled")
			continue
		case "status":
			s, ok := ParseStatusFilter(arg)
			if !ok {
				fmt.Fprintln(out, "unknown status:", arg)
				continue
			}
			vm.SetStatusFilter(ctx, s)
		case "page":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(out, "page must be a number")
				continue
			}
			vm.SetPage(ctx, n)
		case "next":
			st := vm.State()
			if st.Filter.Page >= st.Meta.LastPage {
				fmt.Fprintln(out, "already on the last page")
				continue
			}
			vm.SetPage(ctx, st.Filter.Page+1)
		case "prev":
			st := vm.State()
			if st.Filter.Page <= 1 {
				fmt.Fprintln(out, "already on the first page")
				continue
			}
			vm.SetPage(ctx, st.Filter.Page-1)
		case "perpage":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(out, "perpage must be a number")
				continue
			}
			vm.SetPerPage(ctx, n)
		case "new":
			vm.ResetToNew()
		case "edit":
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil || !vm.Select(uint(id)) {
				fmt.Fprintln(out, "no listed record with id", arg)
				continue
			}
		case "code":
			vm.SetCode(arg)
		case "desc":
			vm.SetDescription(arg)
		case "estado":
			if !vm.SetStatus(domain.Status(strings.ToUpper(arg))) {
				fmt.Fprintln(out, "unknown estado:", arg)
				continue
			}
		case "save":
			vm.Save(ctx)
		case "cancel":
			vm.Cancel()
		case "deactivate":
			vm.RequestDeactivate()
		case "confirm":
			vm.ConfirmDeactivate(ctx)
		case "abort":
			vm.CancelDeactivate()
		case "show":
			renderList(out, vm.State())
		default:
			fmt.Fprintln(out, "unknown command:", cmd, "(try help)")
			continue
		}

		render(out, vm.State())
	}
}

func prompt(st State) string {
	switch {
	case st.ConfirmingDeactivate:
		return fmt.Sprintf("deactivate %s? (confirm/abort) > ", st.Form.Selected.Codigo)
	case st.Form.Mode == ModeEdit && st.Form.Selected != nil:
		return fmt.Sprintf("especialidades [edit %s] > ", st.Form.Selected.Codigo)
	default:
		return "especialidades [new] > "
	}
}

func render(out io.Writer, st State) {
	if st.Notice != nil {
		fmt.Fprintf(out, "[%s] %s\n", st.Notice.Kind, st.Notice.Text)
	}
	renderForm(out, st)
}

func renderList(out io.Writer, st State) {
	fmt.Fprintf(out, "page %d/%d, %d per page, %d total", st.Meta.CurrentPage, st.Meta.LastPage, st.Meta.PerPage, st.Meta.Total)
	if st.Filter.Status != StatusAll {
		fmt.Fprintf(out, ", estado %s", st.Filter.Status)
	}
	if s := strings.TrimSpace(st.Filter.Search); s != "" {
		fmt.Fprintf(out, ", search %q", s)
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODIGO\tDESCRIPCION\tESTADO")
	for _, e := range st.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.ID, e.Codigo, e.Descripcion, e.Estado)
	}
	_ = tw.Flush()
}

func renderForm(out io.Writer, st State) {
	f := st.Form
	fmt.Fprintf(out, "%s  code=%q desc=%q estado=%s", f.Mode, f.Code, f.Description, f.Status)
	var flags []string
	if !st.IsValid {
		flags = append(flags, "invalid")
	}
	if st.IsDirty {
		flags = append(flags, "modified")
	}
	if len(flags) > 0 {
		fmt.Fprintf(out, " (%s)", strings.Join(flags, ", "))
	}
	fmt.Fprintln(out)
}
