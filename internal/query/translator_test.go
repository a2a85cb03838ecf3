package query

import (
	"context"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rentalDescriptor() Descriptor {
	return Descriptor{
		Table:         "rentals r",
		Joins:         "JOIN clients c ON c.id = r.client_id JOIN vehicles v ON v.id = r.vehicle_id JOIN vehicle_models m ON m.id = v.model_id JOIN brands b ON b.id = m.brand_id",
		IDColumn:      "r.id",
		SelectColumns: "r.id, r.folio, r.total_cost, c.name AS client_name",
		TextColumns:   []string{"r.comments", "c.name", "v.plate_number", "m.name", "b.name"},
		NumericColumns: []string{
			"r.total_cost",
			"r.deposit",
		},
		Sortable: map[string]string{
			"createdAt":          "r.created_at",
			"totalCost":          "r.total_cost",
			"client.name":        "c.name",
			"vehicle.model.name": "m.name",
			"vehicle.model.brand.name": "b.name",
		},
		DefaultSort:      "createdAt",
		DefaultDirection: "desc",
		StatusColumn:     "r.status",
		StatusLabels: map[string]string{
			"Pendiente":  "PENDING",
			"Activa":     "ACTIVE",
			"Completada": "COMPLETED",
			"Cancelada":  "CANCELED",
		},
		SoftDeleteColumn: "r.enabled",
	}
}

func TestBuildCoercesInvalidPagination(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{Page: -3, PageSize: 0})

	assert.Equal(t, 1, stmt.Page)
	assert.Equal(t, 10, stmt.PageSize)
	assert.Contains(t, stmt.ListSQL, "LIMIT 10 OFFSET 0")
}

func TestBuildOffsetFromPage(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{Page: 3, PageSize: 25})

	assert.Contains(t, stmt.ListSQL, "LIMIT 25 OFFSET 50")
}

func TestBuildSoftDeleteAlwaysApplied(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{})

	assert.Contains(t, stmt.ListSQL, "r.enabled = TRUE")
	assert.Contains(t, stmt.CountSQL, "r.enabled = TRUE")
}

func TestBuildTextSearchDisjunction(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{Search: "Toyota"})

	assert.Contains(t, stmt.ListSQL, "LOWER(b.name) LIKE $5")
	for _, arg := range stmt.Args {
		assert.Equal(t, "%toyota%", arg)
	}
	// Non-numeric terms must not produce range comparisons.
	assert.NotContains(t, stmt.ListSQL, "BETWEEN")
}

func TestBuildExistsMatchesJoinDisjunction(t *testing.T) {
	desc := rentalDescriptor()
	desc.ExistsMatches = []string{
		"EXISTS (SELECT 1 FROM rental_notes n WHERE n.rental_id = r.id AND LOWER(n.body) LIKE %s)",
	}

	stmt := Build(desc, Request{Search: "Brake"})

	assert.Contains(t, stmt.ListSQL, "EXISTS (SELECT 1 FROM rental_notes n WHERE n.rental_id = r.id AND LOWER(n.body) LIKE $6)")
	assert.Equal(t, "%brake%", stmt.Args[5])
	// The subquery joins the disjunction, it does not add a second WHERE clause.
	assert.Equal(t, 1, strings.Count(stmt.ListSQL, "WHERE 1=1"))
}

func TestBuildNumericToleranceBounds(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{Search: "1000"})

	assert.Contains(t, stmt.ListSQL, "r.total_cost BETWEEN $6 AND $7")
	assert.Contains(t, stmt.ListSQL, "r.deposit BETWEEN $8 AND $9")
	// A record at 0.95x the searched amount falls inside [900, 1100]; 0.5x does not.
	assert.InDelta(t, 900.0, stmt.Args[5], 1e-9)
	assert.InDelta(t, 1100.0, stmt.Args[6], 1e-9)
}

func TestBuildStatusLabelMapping(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{StatusLabels: []string{"Completada", "Pendiente"}})

	assert.Contains(t, stmt.ListSQL, "r.status IN ($1, $2)")
	assert.Equal(t, []interface{}{"COMPLETED", "PENDING"}, stmt.Args)
}

func TestBuildDropsUnknownStatusLabels(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{StatusLabels: []string{"Completada", "Desconocida"}})

	assert.Contains(t, stmt.ListSQL, "r.status IN ($1)")
	assert.Equal(t, []interface{}{"COMPLETED"}, stmt.Args)
}

func TestBuildAllSentinelDisablesStatusFilter(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{StatusLabels: []string{"ALL"}})

	assert.NotContains(t, stmt.ListSQL, "r.status IN")
	assert.Empty(t, stmt.Args)
}

func TestBuildSortAllowList(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{SortField: "vehicle.model.brand.name", SortDirection: "asc"})
	assert.Contains(t, stmt.ListSQL, "ORDER BY b.name ASC")

	// Unknown fields fall back to the descriptor default.
	stmt = Build(rentalDescriptor(), Request{SortField: "folio; DROP TABLE rentals"})
	assert.Contains(t, stmt.ListSQL, "ORDER BY r.created_at DESC")
}

func TestBuildExtraFilters(t *testing.T) {
	stmt := Build(rentalDescriptor(), Request{Filters: map[string]interface{}{"r.client_id": "client-9"}})

	assert.Contains(t, stmt.ListSQL, "r.client_id = $1")
	assert.Equal(t, []interface{}{"client-9"}, stmt.Args)
}

type rentalRow struct {
	ID         string  `db:"id"`
	Folio      string  `db:"folio"`
	TotalCost  float64 `db:"total_cost"`
	ClientName string  `db:"client_name"`
}

func newQueryMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSearchReturnsEnvelope(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "folio", "total_cost", "client_name"}).
		AddRow("1", "RNT-2026-A1B2C3", 1500.0, "ACME").
		AddRow("2", "RNT-2026-D4E5F6", 900.0, "Initech")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.folio, r.total_cost, c.name AS client_name FROM rentals r")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT r.id) FROM rentals r")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	page, err := Search[rentalRow](context.Background(), db, rentalDescriptor(), Request{Page: 1, PageSize: 2})
	require.NoError(t, err)

	assert.Len(t, page.Data, 2)
	assert.Equal(t, 3, page.Pagination.TotalRecords)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 2, page.Pagination.PageSize)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	db, mock, cleanup := newQueryMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT r.id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "folio", "total_cost", "client_name"}))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := Search[rentalRow](context.Background(), db, rentalDescriptor(), Request{})
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Pagination.TotalRecords)
	assert.Equal(t, 0, page.Pagination.TotalPages)
}
