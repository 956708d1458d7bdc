package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwisetyawan/account-service/internal/domain/entity"
	"github.com/dwisetyawan/account-service/internal/domain/repository"
)

const uniqueViolation = "23505"

const accountColumns = `id, username, email, password_hash, first_name, last_name,
	phone_number, birth_date, image_path, is_active, created, modified, last_login`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.findBy(ctx, "id", id)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findBy(ctx, "email", email)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.findBy(ctx, "username", username)
}

func (r *AccountRepository) findBy(ctx context.Context, column, value string) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+column+` = $1
	`, value)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &entity.NotFoundError{Key: column, Value: value}
		}
		return nil, &entity.PersistenceError{Op: "find accounts by " + column, Err: err}
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*entity.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created
	`)
	if err != nil {
		return nil, &entity.PersistenceError{Op: "list accounts", Err: err}
	}
	defer rows.Close()

	var out []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, &entity.PersistenceError{Op: "list accounts", Err: err}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &entity.PersistenceError{Op: "list accounts", Err: err}
	}
	return out, nil
}

func (r *AccountRepository) Insert(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, first_name,
			last_name, phone_number, birth_date, image_path, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created, modified
	`, a.ID, a.Username, a.Email, a.PasswordHash, nullable(a.FirstName),
		nullable(a.LastName), nullable(a.PhoneNumber), a.BirthDate,
		nullable(a.ImagePath), a.IsActive)

	if err := row.Scan(&a.Created, &a.Modified); err != nil {
		if conflict := insertConflict(err, a); conflict != nil {
			return conflict
		}
		return &entity.PersistenceError{Op: "insert account", Err: err}
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *AccountRepository) UpdateUsername(ctx context.Context, id, username string) error {
	return r.updateColumn(ctx, id, "username", username)
}

func (r *AccountRepository) UpdateImagePath(ctx context.Context, id, imagePath string) error {
	return r.updateColumn(ctx, id, "image_path", imagePath)
}

func (r *AccountRepository) updateColumn(ctx context.Context, id, column, value string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET `+column+` = $1, modified = now()
		WHERE id = $2
	`, value, id)
	if err != nil {
		// Among the updatable columns only username carries a unique constraint.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &entity.ConflictError{Field: "username", Value: value}
		}
		return &entity.PersistenceError{Op: "update " + column, Err: err}
	}
	if res.RowsAffected() == 0 {
		return &entity.NotFoundError{Key: "id", Value: id}
	}
	return nil
}

func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string) (time.Time, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET last_login = now(), modified = now()
		WHERE id = $1
		RETURNING last_login
	`, id)

	var at time.Time
	if err := row.Scan(&at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, &entity.NotFoundError{Key: "id", Value: id}
		}
		return time.Time{}, &entity.PersistenceError{Op: "update last_login", Err: err}
	}
	return at, nil
}

// insertConflict maps a unique-constraint violation onto the offending
// field. The constraint is the final authority on uniqueness; a racing
// insert that slips past the service pre-check still lands here.
func insertConflict(err error, a *entity.Account) *entity.ConflictError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return &entity.ConflictError{Field: "email", Value: a.Email}
	}
	return &entity.ConflictError{Field: "username", Value: a.Username}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var firstName, lastName, phone, image *string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &firstName,
		&lastName, &phone, &a.BirthDate, &image, &a.IsActive,
		&a.Created, &a.Modified, &a.LastLogin)
	if err != nil {
		return nil, err
	}
	a.FirstName = deref(firstName)
	a.LastName = deref(lastName)
	a.PhoneNumber = deref(phone)
	a.ImagePath = deref(image)
	return a, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
