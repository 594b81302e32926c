package postgres

import "strconv"

// limitOffset appends LIMIT/OFFSET placeholders for positive values and
// returns the SQL fragment.
func limitOffset(args *[]any, limit, offset int) string {
	var clause string
	if limit > 0 {
		*args = append(*args, limit)
		clause += " LIMIT $" + strconv.Itoa(len(*args))
	}
	if offset > 0 {
		*args = append(*args, offset)
		clause += " OFFSET $" + strconv.Itoa(len(*args))
	}
	return clause
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
