package query

// Descriptor declares, as data, how an entity's list endpoint maps onto SQL:
// which columns are substring-searchable, which tolerate fuzzy numeric
// matching, which field paths may be sorted on, and how soft deletion is
// expressed. One translator consumes descriptors for every entity instead of
// each repository rebuilding near-identical filter logic.
type Descriptor struct {
	// Table is the FROM clause base, including its alias: "rentals r".
	Table string
	// Joins holds the join clauses that expose relation columns referenced by
	// TextColumns and Sortable (up to vehicle.model.brand depth).
	Joins string
	// IDColumn is the base table's primary key, used for COUNT(DISTINCT ...).
	IDColumn string
	// SelectColumns is the projection used by the page-fetch query.
	SelectColumns string

	// TextColumns participate in the case-insensitive substring disjunction
	// built from the free-text search term. Relation columns are listed with
	// their join alias ("b.name" for vehicle.model.brand.name).
	TextColumns []string
	// NumericColumns additionally match when the search term parses as a
	// number, using a +-10% range. The tolerance is intentional (price
	// search), not a bug.
	NumericColumns []string
	// ExistsMatches extends the search disjunction with EXISTS subqueries for
	// one-to-many relations, so a row with several matching children is not
	// multiplied in the list. Each entry is a fmt template whose single %s
	// verb receives the LIKE parameter placeholder:
	//
	//	"EXISTS (SELECT 1 FROM repair_report_parts p WHERE p.report_id = rr.id AND LOWER(p.part_name) LIKE %s)"
	ExistsMatches []string

	// Sortable maps request field paths (dotted for relations) to SQL
	// columns. Paths absent from the map fall back to DefaultSort.
	Sortable         map[string]string
	DefaultSort      string
	DefaultDirection string

	// StatusColumn, when set, enables label-based status filtering through
	// StatusLabels (display label -> internal code). Unknown labels are
	// dropped from the filter, never rejected.
	StatusColumn string
	StatusLabels map[string]string

	// SoftDeleteColumn, when set, restricts every query to rows where the
	// column is TRUE ("r.enabled"). Leave empty for entities without soft
	// deletion.
	SoftDeleteColumn string
}
