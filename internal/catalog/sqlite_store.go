package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// maxResults caps how many products a single search returns.
const maxResults = 10

// SQLiteStore is a product catalog backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the catalog database at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS brands (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price INTEGER NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			rating REAL NOT NULL DEFAULT 0,
			review_count INTEGER NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			brand_id INTEGER REFERENCES brands(id),
			category_id INTEGER REFERENCES categories(id),
			search_text TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_products_title ON products(title);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init catalog schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces a product, creating its brand and category
// rows as needed.
func (s *SQLiteStore) Upsert(ctx context.Context, p Product) error {
	brandID, err := s.ensureName(ctx, "brands", p.Brand)
	if err != nil {
		return err
	}
	categoryID, err := s.ensureName(ctx, "categories", p.Category)
	if err != nil {
		return err
	}

	// SQLite's LOWER only folds ASCII, so the searchable text is lowered
	// here before it is stored.
	searchText := strings.ToLower(p.Title + " " + p.Description + " " + p.Color)
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO products
			(id, title, slug, description, price, color, image, rating, review_count, quantity, brand_id, category_id, search_text)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Title, p.Slug, p.Description, p.Price, p.Color, p.Image,
		p.Rating, p.ReviewCount, p.Quantity, brandID, categoryID, searchText)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ensureName(ctx context.Context, table, name string) (any, error) {
	if name == "" {
		return nil, nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+table+` (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("insert %s %q: %w", table, name, err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, nil
}

// Search runs a relevance search over title, description and color with an
// in-stock boost, joined with brand and category names, capped to the top
// 10 by score. An empty or non-matching query returns no rows.
func (s *SQLiteStore) Search(ctx context.Context, query string) ([]Product, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	where := make([]string, 0, len(tokens))
	args := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		where = append(where, `p.search_text LIKE ?`)
		args = append(args, "%"+tok+"%")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.slug, p.description, p.price, p.color, p.image,
			p.rating, p.review_count, p.quantity,
			COALESCE(b.name, ''), COALESCE(c.name, '')
		FROM products p
		LEFT JOIN brands b ON b.id = p.brand_id
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE `+strings.Join(where, " OR "), args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	type scored struct {
		product Product
		score   float64
	}
	var candidates []scored
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price,
			&p.Color, &p.Image, &p.Rating, &p.ReviewCount, &p.Quantity,
			&p.Brand, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		candidates = append(candidates, scored{product: p, score: relevance(p, tokens)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	out := make([]Product, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.product)
	}
	return out, nil
}

// relevance weighs token matches by field: title counts triple, color
// double, description single, plus a capped in-stock boost.
func relevance(p Product, tokens []string) float64 {
	title := strings.ToLower(p.Title)
	desc := strings.ToLower(p.Description)
	color := strings.ToLower(p.Color)

	var score float64
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += 3
		}
		if strings.Contains(color, tok) {
			score += 2
		}
		if strings.Contains(desc, tok) {
			score += 1
		}
	}

	boost := float64(p.Quantity)
	if boost > 50 {
		boost = 50
	}
	return score + boost/50
}

func tokenize(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if field != "" {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
