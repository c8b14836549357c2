package cart

import (
	"database/sql"

	"github.com/google/uuid"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// itemQuery joins the display fields of whichever side of the reference is
// set. Exactly one side joins because of the XOR CHECK on cart_items.
const itemQuery = `
    SELECT ci.id, ci.product_id, ci.gift_set_id, ci.quantity,
           COALESCE(p.name, g.name) AS name,
           COALESCE(p.price, g.set_price) AS price,
           COALESCE(p.image_url, g.image_url) AS image_url
    FROM cart_items ci
    LEFT JOIN products p ON p.id = ci.product_id
    LEFT JOIN gift_sets g ON g.id = ci.gift_set_id
`

func (r *PostgresRepository) ListByUser(userID uuid.UUID) ([]Item, error) {
	rows, err := r.db.Query(itemQuery+` WHERE ci.user_id = $1 ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetItem(userID, itemID uuid.UUID) (Item, error) {
	row := r.db.QueryRow(itemQuery+` WHERE ci.user_id = $1 AND ci.id = $2`, userID, itemID)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

// Add upserts the line item. The quantity increment happens inside the
// statement, so two concurrent adds for the same reference sum rather than
// last-write-wins.
func (r *PostgresRepository) Add(userID uuid.UUID, ref ItemRef, qty int) (Item, error) {
	var (
		itemID uuid.UUID
		err    error
	)
	if ref.ProductID != nil {
		err = r.db.QueryRow(`
            INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
            VALUES ($1, $2, $3, $4, now(), now())
            ON CONFLICT (user_id, product_id) WHERE product_id IS NOT NULL
            DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
            RETURNING id`,
			uuid.New(), userID, *ref.ProductID, qty).Scan(&itemID)
	} else {
		err = r.db.QueryRow(`
            INSERT INTO cart_items (id, user_id, gift_set_id, quantity, created_at, updated_at)
            VALUES ($1, $2, $3, $4, now(), now())
            ON CONFLICT (user_id, gift_set_id) WHERE gift_set_id IS NOT NULL
            DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
            RETURNING id`,
			uuid.New(), userID, *ref.GiftSetID, qty).Scan(&itemID)
	}
	if err != nil {
		return Item{}, err
	}

	return r.GetItem(userID, itemID)
}

func (r *PostgresRepository) UpdateQuantity(userID, itemID uuid.UUID, qty int) (Item, error) {
	res, err := r.db.Exec(`UPDATE cart_items SET quantity = $1, updated_at = now()
        WHERE user_id = $2 AND id = $3`, qty, userID, itemID)
	if err != nil {
		return Item{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Item{}, ErrNotFound
	}
	return r.GetItem(userID, itemID)
}

func (r *PostgresRepository) Remove(userID, itemID uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = $1 AND id = $2`, userID, itemID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Clear(userID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		it        Item
		productID sql.NullString
		giftSetID sql.NullString
	)
	err := row.Scan(&it.ID, &productID, &giftSetID, &it.Quantity, &it.Name, &it.Price, &it.ImageURL)
	if err != nil {
		return Item{}, err
	}
	if productID.Valid {
		id, err := uuid.Parse(productID.String)
		if err != nil {
			return Item{}, err
		}
		it.ProductID = &id
	}
	if giftSetID.Valid {
		id, err := uuid.Parse(giftSetID.String)
		if err != nil {
			return Item{}, err
		}
		it.GiftSetID = &id
	}
	return it, nil
}
