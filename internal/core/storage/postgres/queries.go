package postgres

// SQL queries for order storage.

const (
	// querySaveOrder inserts an order idempotently on its ID.
	// RETURNING retrieves the auto-generated ingest_seq for cursor tracking.
	// ON CONFLICT DO NOTHING returns no rows (sql.ErrNoRows) for duplicates.
	querySaveOrder = `
		INSERT INTO orders (
			id, supplier_id, supplier_name, created_at, total, items
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING ingest_seq
	`

	// queryListOrdersAfterCursor fetches orders after a cursor (ingest_seq)
	// in strict total order. Report builders page through the full history
	// with this; the monotonic sequence prevents batch-boundary gaps.
	queryListOrdersAfterCursor = `
		SELECT
			id, supplier_id, supplier_name, created_at, total, items, ingest_seq
		FROM orders
		WHERE ingest_seq > $1
		ORDER BY ingest_seq ASC
		LIMIT $2
	`

	// queryCountOrders returns the size of the stored history.
	queryCountOrders = `SELECT COUNT(*) FROM orders`
)
