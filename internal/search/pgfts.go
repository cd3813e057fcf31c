package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a
// fallback. Only the database-backed resources (complaints and content
// pages) are covered; user hits come back once Meilisearch recovers.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true. If Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across complaints and content_pages
// using plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultComplaint {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'complaint'::text AS type, c.id, c.subject AS title,
				ts_headline('english', coalesce(c.description, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				c.status,
				ts_rank(c.fts, %s) AS rank
			FROM complaints c
			WHERE c.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultPage {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'page'::text AS type, cp.id, cp.title,
				ts_headline('english', coalesce(cp.body, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				cp.status,
				ts_rank(cp.fts, %s) AS rank
			FROM content_pages cp
			WHERE cp.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, status
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.Status); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns the database-backed searchable records for full
// reindexing. User records are pushed separately from the in-memory
// collections.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]ComplaintRecord, []PageRecord, error) {
	complaintRows, err := p.db.QueryContext(ctx, `
		SELECT id, subject, description, customer_name, status
		FROM complaints
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load complaints: %w", err)
	}
	defer complaintRows.Close()

	complaints := make([]ComplaintRecord, 0)
	for complaintRows.Next() {
		var c ComplaintRecord
		if err := complaintRows.Scan(&c.ID, &c.Subject, &c.Body, &c.UserName, &c.Status); err != nil {
			return nil, nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}
	if err := complaintRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate complaints: %w", err)
	}

	pageRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, slug, body, status
		FROM content_pages
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load pages: %w", err)
	}
	defer pageRows.Close()

	pages := make([]PageRecord, 0)
	for pageRows.Next() {
		var pg PageRecord
		if err := pageRows.Scan(&pg.ID, &pg.Title, &pg.Slug, &pg.Body, &pg.Status); err != nil {
			return nil, nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, pg)
	}
	if err := pageRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate pages: %w", err)
	}

	return complaints, pages, nil
}
