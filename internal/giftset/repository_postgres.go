package giftset

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const giftSetColumns = `id, name, description, set_price, original_price, rating, image_url, product_ids`

func (r *PostgresRepository) List() ([]GiftSet, error) {
	rows, err := r.db.Query(`SELECT ` + giftSetColumns + ` FROM gift_sets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GiftSet, 0)
	for rows.Next() {
		g, err := scanGiftSet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(id uuid.UUID) (GiftSet, error) {
	row := r.db.QueryRow(`SELECT `+giftSetColumns+` FROM gift_sets WHERE id = $1`, id)
	g, err := scanGiftSet(row)
	if err == sql.ErrNoRows {
		return GiftSet{}, ErrNotFound
	}
	if err != nil {
		return GiftSet{}, err
	}
	return g, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGiftSet(row rowScanner) (GiftSet, error) {
	var (
		g   GiftSet
		ids []string
	)
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.SetPrice, &g.OriginalPrice, &g.Rating, &g.ImageURL, pq.Array(&ids))
	if err != nil {
		return GiftSet{}, err
	}
	g.ProductIDs = make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return GiftSet{}, err
		}
		g.ProductIDs = append(g.ProductIDs, id)
	}
	return g, nil
}
