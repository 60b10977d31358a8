package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/models"
)

// Dialect selects the SQL driver and placeholder style
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

const productsTable = "products"

var productColumns = []string{
	"id",
	"name",
	"COALESCE(brand, '')",
	"category",
	"price",
	"calories",
	"protein",
	"COALESCE(protein_per_dollar, 0)",
	"COALESCE(protein_per_100cal, 0)",
	"COALESCE(store_id, '')",
	"COALESCE(serving_size, '')",
	"COALESCE(servings_per_container, 0)",
	"COALESCE(image_url, '')",
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	brand TEXT,
	category TEXT NOT NULL,
	price REAL NOT NULL,
	calories INTEGER NOT NULL DEFAULT 0,
	protein REAL NOT NULL DEFAULT 0,
	protein_per_dollar REAL,
	protein_per_100cal REAL,
	store_id TEXT,
	serving_size TEXT,
	servings_per_container REAL,
	image_url TEXT
)`

// OpenDB opens and pings a database for the given dialect
func OpenDB(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	switch dialect {
	case DialectPostgres, DialectSQLite:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return db, nil
}

// SQLProductRepository reads products from a Postgres or SQLite products table
type SQLProductRepository struct {
	db      *sql.DB
	dialect Dialect
	builder sq.StatementBuilderType
}

var _ ProductRepository = (*SQLProductRepository)(nil)

// NewSQLProductRepository wires a sql.DB opened for dialect
func NewSQLProductRepository(db *sql.DB, dialect Dialect) *SQLProductRepository {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		placeholder = sq.Dollar
	}

	return &SQLProductRepository{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
}

// EnsureSchema creates the products table on SQLite. Postgres schemas are
// managed outside this service.
func (r *SQLProductRepository) EnsureSchema(ctx context.Context) error {
	if r.dialect != DialectSQLite {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// likeEscaper makes LIKE patterns match literally, as strings.Contains does
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// findQuery pushes the catalog filters down to SQL. Ordering and truncation
// stay with catalog.Rank so every source ranks identically.
func (r *SQLProductRepository) findQuery(q catalog.Query) sq.SelectBuilder {
	query := r.builder.
		Select(productColumns...).
		From(productsTable).
		Where(sq.Gt{"protein": q.MinProtein}).
		Where(sq.Gt{"price": 0}).
		OrderBy("id")

	if q.Category != "" && q.Category != models.CategoryAll {
		query = query.Where(sq.Eq{"category": string(q.Category)})
	}

	if q.StoreID != "" {
		query = query.Where(sq.Eq{"store_id": q.StoreID})
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		query = query.Where(sq.Expr(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(search)+"%"))
	}

	return query
}

// Find returns products matching the filters in q
func (r *SQLProductRepository) Find(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	query, args, err := r.findQuery(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		products = append(products, catalog.WithEfficiency(p))
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return products, nil
}

// GetByID returns a product by its ID
func (r *SQLProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query, args, err := r.builder.
		Select(productColumns...).
		From(productsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	p = catalog.WithEfficiency(p)
	return &p, nil
}

// upsertBatchSize keeps a single INSERT below SQLite's bound-variable limit
const upsertBatchSize = 500

// Upsert inserts products or replaces existing rows with the same ID.
// Within products a later duplicate ID wins.
func (r *SQLProductRepository) Upsert(ctx context.Context, products []models.Product) (int, error) {
	unique := dedupeByID(products)

	for start := 0; start < len(unique); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(unique))
		if err := r.upsertBatch(ctx, unique[start:end]); err != nil {
			return start, err
		}
	}

	return len(unique), nil
}

func (r *SQLProductRepository) upsertBatch(ctx context.Context, products []models.Product) error {
	insert := r.builder.
		Insert(productsTable).
		Columns(
			"id", "name", "brand", "category", "price", "calories", "protein",
			"protein_per_dollar", "protein_per_100cal", "store_id",
			"serving_size", "servings_per_container", "image_url",
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			category = excluded.category,
			price = excluded.price,
			calories = excluded.calories,
			protein = excluded.protein,
			protein_per_dollar = excluded.protein_per_dollar,
			protein_per_100cal = excluded.protein_per_100cal,
			store_id = excluded.store_id,
			serving_size = excluded.serving_size,
			servings_per_container = excluded.servings_per_container,
			image_url = excluded.image_url`)

	for _, p := range products {
		p = catalog.WithEfficiency(p)
		insert = insert.Values(
			p.ID, p.Name, p.Brand, string(p.Category), p.Price, p.Calories, p.Protein,
			p.ProteinPerDollar, p.ProteinPer100Cal, p.StoreID,
			p.ServingSize, p.ServingsPerContainer, p.ImageURL,
		)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}

	return nil
}

func dedupeByID(products []models.Product) []models.Product {
	index := make(map[string]int, len(products))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			out[i] = p
			continue
		}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var (
		p        models.Product
		category string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &category, &p.Price, &p.Calories, &p.Protein,
		&p.ProteinPerDollar, &p.ProteinPer100Cal, &p.StoreID,
		&p.ServingSize, &p.ServingsPerContainer, &p.ImageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, err
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.Category = models.Category(category)
	return p, nil
}
