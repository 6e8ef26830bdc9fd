package pkg

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/admision/internal/domain"
)

const (
	defaultPage    = 1
	defaultPerPage = domain.PerPageMedium
	maxQueryLength = 100

	// maxPage keeps (page-1)*per_page within int for every allowed page size.
	maxPage = math.MaxInt / domain.PerPageLarge
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination and filtering parameters from query params.
// per_page is coerced into {25, 50, 100}; an unknown status is ignored.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}
	page = min(page, maxPage)

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if err != nil {
		perPage = defaultPerPage
	}

	q := strings.TrimSpace(c.Query("q"))
	if r := []rune(q); len(r) > maxQueryLength {
		q = string(r[:maxQueryLength])
	}

	status := domain.Status(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	if !status.Valid() {
		status = ""
	}

	return domain.PageRequest{
		Page:    page,
		PerPage: domain.NormalizePerPage(perPage),
		Query:   q,
		Status:  status,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the page request.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		page := min(max(req.Page, 1), maxPage)
		offset := (page - 1) * req.PerPage
		return db.Offset(offset).Limit(req.PerPage)
	}
}

// Search returns a GORM scope that matches q as a substring of any of the
// given columns. Column names failing validation are skipped; an empty q
// or no usable column leaves the query untouched.
func Search(q string, fields []string) func(db *gorm.DB) *gorm.DB {
	q = strings.TrimSpace(q)
	return func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}

		pattern := "%" + escapeLike(q) + "%"
		var clauses []string
		var args []any
		for _, f := range fields {
			if !validFieldName.MatchString(f) {
				continue
			}
			clauses = append(clauses, f+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		if len(clauses) == 0 {
			return db
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// WithStatus returns a GORM scope filtering on the estado column when status is set.
func WithStatus(status domain.Status) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("estado = ?", status)
	}
}

// BuildPage assembles a PageResult and its metadata. last_page is at least 1
// so an empty result still reports a valid page.
func BuildPage[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	lastPage := 1
	if req.PerPage > 0 && total > 0 {
		lastPage = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}

	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items: items,
		Meta: domain.PageMeta{
			CurrentPage: req.Page,
			PerPage:     req.PerPage,
			Total:       total,
			LastPage:    lastPage,
		},
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
