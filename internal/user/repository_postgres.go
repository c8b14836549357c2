package user

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, password, full_name, avatar_url, metadata, created_at, updated_at`

func (r *PostgresRepository) GetByID(id uuid.UUID) (User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	row := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresRepository) Create(u User) (User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	meta, err := json.Marshal(u.Metadata)
	if err != nil {
		return User{}, err
	}
	row := r.db.QueryRow(`INSERT INTO users (id, email, password, full_name, avatar_url, metadata, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING `+userColumns,
		u.ID, u.Email, u.Password, u.FullName, nullable(u.AvatarURL), meta, u.CreatedAt, u.UpdatedAt)
	return scanUser(row)
}

func (r *PostgresRepository) Update(id uuid.UUID, u User) (User, error) {
	meta, err := json.Marshal(u.Metadata)
	if err != nil {
		return User{}, err
	}
	row := r.db.QueryRow(`UPDATE users
        SET email = $1, full_name = $2, avatar_url = $3, metadata = $4,
            password = COALESCE(NULLIF($5, ''), password), updated_at = $6
        WHERE id = $7
        RETURNING `+userColumns,
		u.Email, u.FullName, nullable(u.AvatarURL), meta, u.Password, u.UpdatedAt, id)
	return scanUser(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u      User
		avatar sql.NullString
		meta   []byte
	)
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &avatar, &meta, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if avatar.Valid {
		u.AvatarURL = avatar.String
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &u.Metadata); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
