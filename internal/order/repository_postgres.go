package order

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

const orderColumns = `id, user_id, order_date, status, total_price, shipping_location, payment_method, payment_session_id, items`

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	if ord.ID == uuid.Nil {
		ord.ID = uuid.New()
	}
	items, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	row := r.db.QueryRow(`INSERT INTO orders (id, user_id, order_date, status, total_price, shipping_location, payment_method, payment_session_id, items)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING `+orderColumns,
		ord.ID, ord.UserID, ord.OrderDate, ord.Status, ord.TotalPrice, ord.ShippingLocation, ord.PaymentMethod, ord.PaymentSessionID, items)
	return scanOrder(row)
}

func (r *PostgresRepository) ListByUser(userID uuid.UUID) ([]Order, error) {
	rows, err := r.db.Query(`SELECT `+orderColumns+` FROM orders
        WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByID(userID, orderID uuid.UUID) (Order, error) {
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders
        WHERE user_id = $1 AND id = $2`, userID, orderID)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

func (r *PostgresRepository) GetByPaymentSession(sessionID string) (Order, error) {
	if sessionID == "" {
		return Order{}, ErrNotFound
	}
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders
        WHERE payment_session_id = $1`, sessionID)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

// UpdateStatus writes only the status column; the snapshot stays frozen.
func (r *PostgresRepository) UpdateStatus(userID, orderID uuid.UUID, status Status) (Order, error) {
	row := r.db.QueryRow(`UPDATE orders SET status = $1
        WHERE user_id = $2 AND id = $3
        RETURNING `+orderColumns, status, userID, orderID)
	ord, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	return ord, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		ord   Order
		items []byte
	)
	err := row.Scan(&ord.ID, &ord.UserID, &ord.OrderDate, &ord.Status, &ord.TotalPrice, &ord.ShippingLocation, &ord.PaymentMethod, &ord.PaymentSessionID, &items)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &ord.Items); err != nil {
		return Order{}, err
	}
	return ord, nil
}
