package postgresrepo

import (
	"errors"
	"fmt"

	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/feastline/order-svc/internal/dal/postgres"
	"github.com/feastline/order-svc/internal/pkg/errs"
	"github.com/feastline/order-svc/internal/service/models/order"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ordersTable = "orders"

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id              int64   `db:"id"`
	CustomerId      int64   `db:"customer_id"`
	RestaurantId    int64   `db:"restaurant_id"`
	OrderDate       string  `db:"order_date"`
	TotalAmount     float64 `db:"total_amount"`
	Items           []int64 `db:"items"`
	Status          int64   `db:"status"`
	DeliveryAddress string  `db:"delivery_address"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() *order.Order {
	return &order.Order{
		ID:              o.Id,
		CustomerID:      o.CustomerId,
		RestaurantID:    o.RestaurantId,
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		Items:           o.Items,
		Status:          order.Status(o.Status),
		DeliveryAddress: o.DeliveryAddress,
	}
}

// OrderDalFromModel converts a service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:              o.ID,
		CustomerId:      o.CustomerID,
		RestaurantId:    o.RestaurantID,
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		Items:           o.Items,
		Status:          int64(o.Status),
		DeliveryAddress: o.DeliveryAddress,
	}
}

// PostgresOrderRepository persists orders through a pgx connection or
// transaction.
type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists a single order and returns the store-assigned id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (int64, error) {
	dal := OrderDalFromModel(&o)

	query, args, err := qb.Insert(ordersTable).
		Columns(
			"customer_id",
			"order_date",
			"total_amount",
			"items",
			"restaurant_id",
			"status",
			"delivery_address",
		).
		Values(
			dal.CustomerId,
			dal.OrderDate,
			dal.TotalAmount,
			dal.Items,
			dal.RestaurantId,
			dal.Status,
			dal.DeliveryAddress,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert order query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	return id, nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := qb.Select(
		"id",
		"customer_id",
		"restaurant_id",
		"order_date",
		"total_amount",
		"items",
		"status",
		"delivery_address",
	).From(ordersTable)

	if filter.CustomerID > 0 {
		builder = builder.Where(sq.Eq{"customer_id": filter.CustomerID})
	}
	if filter.RestaurantID > 0 {
		builder = builder.Where(sq.Eq{"restaurant_id": filter.RestaurantID})
	}

	query, args, err := builder.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query orders query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := []order.Order{}
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(
			&dal.Id,
			&dal.CustomerId,
			&dal.RestaurantId,
			&dal.OrderDate,
			&dal.TotalAmount,
			&dal.Items,
			&dal.Status,
			&dal.DeliveryAddress,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		result = append(result, *dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetForUpdate loads an order row and locks it until the surrounding
// transaction finishes.
func (r *PostgresOrderRepository) GetForUpdate(ctx context.Context, orderID int64) (*order.Order, error) {
	query, args, err := qb.Select(
		"id",
		"customer_id",
		"restaurant_id",
		"order_date",
		"total_amount",
		"items",
		"status",
		"delivery_address",
	).From(ordersTable).
		Where(sq.Eq{"id": orderID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get order query: %w", err)
	}

	var dal OrderDal
	if err := r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.CustomerId,
		&dal.RestaurantId,
		&dal.OrderDate,
		&dal.TotalAmount,
		&dal.Items,
		&dal.Status,
		&dal.DeliveryAddress,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel(), nil
}

// UpdateStatus overwrites the status of an existing order. A missing row is
// reported, not silently ignored.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status) error {
	query, args, err := qb.Update(ordersTable).
		Set("status", int64(status)).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrOrderNotFound
	}

	return nil
}
