package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
	"github.com/redprice-lab/redprice-analytics/internal/core/storage"
)

func TestAdapter_SaveOrder(t *testing.T) {
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		order      *v1.Order
		mockResult func(mock sqlmock.Sqlmock, order *v1.Order)
		assertions func(t *testing.T, order *v1.Order, err error)
	}{
		{
			name: "success sets ingest seq",
			order: &v1.Order{
				ID:           "ord-1",
				SupplierID:   "sup-1",
				SupplierName: "Хозторг",
				CreatedAt:    now,
				Total:        decimal.NewFromInt(4000),
				Items: []v1.OrderLineItem{{
					ProductName:    "Контейнер",
					Category:       "Контейнеры",
					Price:          decimal.NewFromInt(400),
					QuantityBoxes:  decimal.NewFromInt(10),
					QuantityPerBox: decimal.NewFromInt(1),
					SupplierID:     "sup-1",
					SupplierName:   "Хозторг",
				}},
			},
			mockResult: func(mock sqlmock.Sqlmock, order *v1.Order) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveOrder)).
					WithArgs(
						order.ID,
						order.SupplierID,
						order.SupplierName,
						order.CreatedAt,
						sqlmock.AnyArg(),
						sqlmock.AnyArg(),
					).
					WillReturnRows(sqlmock.NewRows([]string{"ingest_seq"}).AddRow(int64(42)))
			},
			assertions: func(t *testing.T, order *v1.Order, err error) {
				require.NoError(t, err)
				require.Equal(t, int64(42), order.IngestSeq)
			},
		},
		{
			name: "duplicate maps to ErrDuplicate",
			order: &v1.Order{
				ID:         "ord-dup",
				SupplierID: "sup-1",
				CreatedAt:  now,
			},
			mockResult: func(mock sqlmock.Sqlmock, order *v1.Order) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveOrder)).
					WithArgs(
						order.ID,
						order.SupplierID,
						order.SupplierName,
						order.CreatedAt,
						sqlmock.AnyArg(),
						sqlmock.AnyArg(),
					).
					WillReturnRows(sqlmock.NewRows([]string{"ingest_seq"}))
			},
			assertions: func(t *testing.T, _ *v1.Order, err error) {
				require.ErrorIs(t, err, storage.ErrDuplicate)
			},
		},
		{
			name: "query failure wraps error",
			order: &v1.Order{
				ID:        "ord-err",
				CreatedAt: now,
			},
			mockResult: func(mock sqlmock.Sqlmock, _ *v1.Order) {
				mock.ExpectQuery(regexp.QuoteMeta(querySaveOrder)).
					WillReturnError(errors.New("connection reset"))
			},
			assertions: func(t *testing.T, _ *v1.Order, err error) {
				require.Error(t, err)
				require.ErrorContains(t, err, "failed to save order")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			tc.mockResult(mock, tc.order)

			err := adapter.SaveOrder(context.Background(), tc.order)
			tc.assertions(t, tc.order, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_ListOrdersAfterCursor(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	created := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	itemsJSON := []byte(`[{"product_name":"Контейнер","category":"Контейнеры","price":"400","quantity_boxes":"10","quantity_per_box":"1","supplier_id":"sup-1","supplier_name":"Хозторг"}]`)

	mock.ExpectQuery(regexp.QuoteMeta(queryListOrdersAfterCursor)).
		WithArgs(int64(42), 500).
		WillReturnRows(sqlmock.NewRows(orderRowColumns()).
			AddRow("ord-43", "sup-1", "Хозторг", created, "4000", itemsJSON, int64(43)))

	orders, err := adapter.ListOrdersAfterCursor(context.Background(), 42, 500)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "ord-43", orders[0].ID)
	require.Equal(t, int64(43), orders[0].IngestSeq)
	require.True(t, decimal.NewFromInt(4000).Equal(orders[0].Total))
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, "Контейнер", orders[0].Items[0].ProductName)
	require.True(t, decimal.NewFromInt(400).Equal(orders[0].Items[0].Price))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_ListOrdersAfterCursor_MalformedItems(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	created := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(queryListOrdersAfterCursor)).
		WithArgs(int64(0), 10).
		WillReturnRows(sqlmock.NewRows(orderRowColumns()).
			AddRow("ord-1", "sup-1", "Хозторг", created, "0", []byte(`{not json`), int64(1)))

	_, err := adapter.ListOrdersAfterCursor(context.Background(), 0, 10)
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to unmarshal items")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_CountOrders(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryCountOrders)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := adapter.CountOrders(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(7), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adapter := &Adapter{
		db:               db,
		stmtSaveOrder:    mustPrepareStmt(t, db, mock, querySaveOrder),
		stmtListByCursor: mustPrepareStmt(t, db, mock, queryListOrdersAfterCursor),
		stmtCountOrders:  mustPrepareStmt(t, db, mock, queryCountOrders),
	}

	return adapter, mock, db
}

func mustPrepareStmt(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock, query string) *sql.Stmt {
	t.Helper()

	mock.ExpectPrepare(regexp.QuoteMeta(query))
	stmt, err := db.Prepare(query)
	require.NoError(t, err)

	return stmt
}

func orderRowColumns() []string {
	return []string{
		"id",
		"supplier_id",
		"supplier_name",
		"created_at",
		"total",
		"items",
		"ingest_seq",
	}
}
