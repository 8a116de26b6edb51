package store

import (
	"context"
	"database/sql"
	models "storefront/model"
	"strconv"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// pgUniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

// PostgresStore backs both the product catalog and the user store.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := DB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PostgresStore{DB: DB}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// Migrate runs the given schema script.
func (s *PostgresStore) Migrate(ctx context.Context, schema string) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	return nil
}

// Seed inserts products when the products table is still empty.
// It reports how many rows were inserted.
func (s *PostgresStore) Seed(ctx context.Context, products []models.Product) (int, error) {
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count products")
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (name, description, category, price, image, featured) VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx, p.Name, p.Description, p.Category, p.Price, p.Image, p.Featured); err != nil {
			return 0, errors.Wrapf(err, "seed product %q", p.Name)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(products), nil
}

// --- Catalog ---

// Create inserts a product and returns its id
func (s *PostgresStore) Create(ctx context.Context, p models.Product) (string, error) {
	var id int64
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO products (name, description, category, price, image, featured) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.Name, p.Description, p.Category, p.Price, p.Image, p.Featured,
	).Scan(&id)
	if err != nil {
		return "", errors.Wrap(err, "insert product")
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *PostgresStore) Find(ctx context.Context, id string) (models.Product, error) {
	// ids are bigserial. Only the canonical decimal form matches, so "01"
	// and "+1" are not aliases of "1".
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != id {
		return models.Product{}, ErrNotFound
	}
	row := s.DB.QueryRowContext(ctx, `SELECT id, name, description, category, price, image, featured FROM products WHERE id = $1`, n)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, errors.Wrapf(err, "find product %s", id)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, description, category, price, image, featured FROM products ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(sc scanner) (models.Product, error) {
	var (
		p        models.Product
		id       int64
		desc     sql.NullString
		category sql.NullString
		image    sql.NullString
	)
	if err := sc.Scan(&id, &p.Name, &desc, &category, &p.Price, &image, &p.Featured); err != nil {
		return models.Product{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	p.Description = desc.String
	p.Category = category.String
	p.Image = image.String
	return p, nil
}

// --- Users ---

// CreateUser inserts a user; a duplicate username or email maps to ErrConflict.
func (s *PostgresStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return ErrConflict
	}
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (s *PostgresStore) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1 OR email = $1`, login)
	return scanUser(row)
}

func (s *PostgresStore) FindUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`, username, email).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "check user exists")
	}
	return exists, nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "scan user")
	}
	return u, nil
}

// Users exposes the user table through the UserStore interface.
func (s *PostgresStore) Users() UserStore { return pgUsers{s} }

type pgUsers struct{ s *PostgresStore }

func (u pgUsers) Create(ctx context.Context, user models.User) error {
	return u.s.CreateUser(ctx, user)
}
func (u pgUsers) FindByLogin(ctx context.Context, login string) (models.User, error) {
	return u.s.FindUserByLogin(ctx, login)
}
func (u pgUsers) FindByID(ctx context.Context, id string) (models.User, error) {
	return u.s.FindUserByID(ctx, id)
}
func (u pgUsers) Exists(ctx context.Context, username, email string) (bool, error) {
	return u.s.UserExists(ctx, username, email)
}
