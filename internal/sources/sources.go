// Package sources implements the CRM, LMS and RMS source repositories over a
// read-only SQL replica of the Edify operational data.
package sources

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// TableConfig describes one searchable source table.
type TableConfig struct {
	Table        string
	Keywords     []string
	SearchFields []string
	DateField    string
	OrderField   string
}

// Repository answers free-text queries against a fixed set of tables.
type Repository struct {
	name      domain.Category
	db        *sql.DB
	tables    []TableConfig
	fallback  string
	stopWords *regexp.Regexp
	keywords  map[string][]*regexp.Regexp
	pageSize  int
	now       func() time.Time
	log       *logger.Logger
}

// OpenReplica opens the source replica through the pure-Go sqlite driver.
func OpenReplica(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}
	return db, nil
}

// NewRepository builds a repository over tables. fallback names the table used
// when no table keyword matches; it must be one of tables.
func NewRepository(name domain.Category, db *sql.DB, tables []TableConfig, fallback string, pageSize int, log *logger.Logger) *Repository {
	if pageSize <= 0 {
		pageSize = 10
	}
	if log == nil {
		log = logger.Nop()
	}

	words := append([]string{}, baseStopWords...)
	words = append(words, string(name))
	keywords := make(map[string][]*regexp.Regexp, len(tables))
	for _, t := range tables {
		for _, kw := range t.Keywords {
			keywords[t.Table] = append(keywords[t.Table], wordPattern(kw))
			words = append(words, kw)
		}
	}

	return &Repository{
		name:      name,
		db:        db,
		tables:    tables,
		fallback:  fallback,
		stopWords: phrasePattern(words),
		keywords:  keywords,
		pageSize:  pageSize,
		now:       time.Now,
		log:       log.Component(string(name) + "_repository"),
	}
}

// Retrieve searches the best matching table for text.
func (r *Repository) Retrieve(ctx context.Context, text string, _ domain.ConversationWindow) ([]domain.Record, error) {
	table := r.detectTable(text)
	filters := parseFilters(text, r.now())
	filters.Terms = r.searchTerms(text)

	records, err := r.search(ctx, table, filters)
	if err != nil {
		return nil, fmt.Errorf("%s search on %s: %w", r.name, table.Table, err)
	}

	r.log.Debug().
		Str("table", table.Table).
		Strs("terms", filters.Terms).
		Bool("date_filter", filters.HasRange()).
		Int("records", len(records)).
		Msg("source search completed")
	return records, nil
}

// detectTable scores each table by keyword hits; ties go to the earlier table.
func (r *Repository) detectTable(text string) TableConfig {
	lower := strings.ToLower(text)
	best, bestScore := -1, 0
	for i, t := range r.tables {
		score := 0
		for _, re := range r.keywords[t.Table] {
			if re.MatchString(lower) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return r.tables[best]
	}
	for _, t := range r.tables {
		if t.Table == r.fallback {
			return t
		}
	}
	return r.tables[0]
}

// searchTerms strips filler, date words and table vocabulary, keeping the rest.
func (r *Repository) searchTerms(text string) []string {
	rest := r.stopWords.ReplaceAllString(text, " ")
	var terms []string
	for _, f := range strings.Fields(rest) {
		f = strings.Trim(f, ".,;:!?\"'()")
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

func (r *Repository) search(ctx context.Context, t TableConfig, f Filters) ([]domain.Record, error) {
	var where []string
	var args []interface{}

	if f.HasRange() && t.DateField != "" {
		where = append(where, fmt.Sprintf("%s >= ? AND %s <= ?", quoteIdent(t.DateField), quoteIdent(t.DateField)))
		args = append(args, f.Start.Format(dateLayout), f.End.Format(dateLayout))
	}
	for _, term := range f.Terms {
		var ors []string
		for _, field := range t.SearchFields {
			ors = append(ors, quoteIdent(field)+" LIKE ?")
			args = append(args, "%"+term+"%")
		}
		if len(ors) > 0 {
			where = append(where, "("+strings.Join(ors, " OR ")+")")
		}
	}

	query := "SELECT * FROM " + quoteIdent(t.Table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if t.OrderField != "" {
		query += " ORDER BY " + quoteIdent(t.OrderField) + " DESC"
	}
	query += " LIMIT ?"
	args = append(args, r.pageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, t.Table)
}

func scanRecords(rows *sql.Rows, table string) ([]domain.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(domain.Record, len(cols)+1)
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = values[i]
		}
		rec["_table"] = table
		records = append(records, rec)
	}
	return records, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(word)) + `\b`)
}

// phrasePattern matches any of words as whole words, longest first so
// multi-word phrases win over their parts.
func phrasePattern(words []string) *regexp.Regexp {
	sorted := append([]string{}, words...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, w := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
