package query

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mycad-io/fleet-api/internal/models"
)

// Page is the paginated result envelope for a list query.
type Page[T any] struct {
	Data       []T                `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

// Statement is a fully built pair of SQL queries ready for execution.
type Statement struct {
	ListSQL  string
	CountSQL string
	Args     []interface{}
	Page     int
	PageSize int
}

// Build translates a request against a descriptor into the page-fetch and
// count statements. Both share the same WHERE clause and args; pagination is
// inlined (LIMIT/OFFSET are computed integers, not parameters), matching how
// the repositories hand-build their queries.
func Build(desc Descriptor, req Request) Statement {
	req.normalize()

	conditions := []string{"1=1"}
	args := []interface{}{}

	if desc.SoftDeleteColumn != "" {
		conditions = append(conditions, fmt.Sprintf("%s = TRUE", desc.SoftDeleteColumn))
	}

	if term := strings.TrimSpace(req.Search); term != "" {
		ors := make([]string, 0, len(desc.TextColumns)+len(desc.ExistsMatches)+len(desc.NumericColumns))
		for _, col := range desc.TextColumns {
			args = append(args, "%"+strings.ToLower(term)+"%")
			ors = append(ors, fmt.Sprintf("LOWER(%s) LIKE $%d", col, len(args)))
		}
		for _, sub := range desc.ExistsMatches {
			args = append(args, "%"+strings.ToLower(term)+"%")
			ors = append(ors, fmt.Sprintf(sub, fmt.Sprintf("$%d", len(args))))
		}
		if number, err := strconv.ParseFloat(term, 64); err == nil {
			for _, col := range desc.NumericColumns {
				args = append(args, number*0.9, number*1.1)
				ors = append(ors, fmt.Sprintf("%s BETWEEN $%d AND $%d", col, len(args)-1, len(args)))
			}
		}
		if len(ors) > 0 {
			conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
		}
	}

	if codes := resolveStatusCodes(desc, req.StatusLabels); len(codes) > 0 {
		placeholders := make([]string, len(codes))
		for i, code := range codes {
			args = append(args, code)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", desc.StatusColumn, strings.Join(placeholders, ", ")))
	}

	for col, value := range req.Filters {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	base := desc.Table
	if desc.Joins != "" {
		base += " " + desc.Joins
	}
	where := strings.Join(conditions, " AND ")

	orderColumn, direction := resolveSort(desc, req)
	offset := (req.Page - 1) * req.PageSize

	listSQL := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		desc.SelectColumns, base, where, orderColumn, direction, req.PageSize, offset)
	countSQL := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM %s WHERE %s", desc.IDColumn, base, where)

	return Statement{
		ListSQL:  listSQL,
		CountSQL: countSQL,
		Args:     args,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
}

// Search executes the translated statements: one page fetch and one count,
// in that order, with no transactional consistency between them (list views
// tolerate counts drifting under concurrent writes). An empty match returns
// an empty data slice, not an error.
func Search[T any](ctx context.Context, db sqlx.QueryerContext, desc Descriptor, req Request) (Page[T], error) {
	stmt := Build(desc, req)

	data := make([]T, 0, stmt.PageSize)
	if err := sqlx.SelectContext(ctx, db, &data, stmt.ListSQL, stmt.Args...); err != nil {
		return Page[T]{}, fmt.Errorf("list query: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, db, &total, stmt.CountSQL, stmt.Args...); err != nil {
		return Page[T]{}, fmt.Errorf("count query: %w", err)
	}

	return Page[T]{
		Data:       data,
		Pagination: models.NewPagination(total, stmt.Page, stmt.PageSize),
	}, nil
}

// resolveStatusCodes maps display labels through the descriptor table. The
// ALL sentinel disables the filter; unknown labels are silently dropped.
func resolveStatusCodes(desc Descriptor, labels []string) []string {
	if desc.StatusColumn == "" || len(labels) == 0 {
		return nil
	}
	codes := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == StatusAll {
			return nil
		}
		if code, ok := desc.StatusLabels[label]; ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func resolveSort(desc Descriptor, req Request) (column, direction string) {
	column, ok := desc.Sortable[req.SortField]
	if !ok {
		column = desc.Sortable[desc.DefaultSort]
	}

	direction = strings.ToUpper(req.SortDirection)
	if direction != "ASC" && direction != "DESC" {
		direction = strings.ToUpper(desc.DefaultDirection)
		if direction != "ASC" && direction != "DESC" {
			direction = "DESC"
		}
	}
	return column, direction
}
