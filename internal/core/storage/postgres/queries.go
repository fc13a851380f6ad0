package postgres

// SQL for snapshot loading and summary materialization. The summary tables are
// the wire contract the read API depends on; column names follow the table
// schemas in the migrations.

const (
	querySelectBrands = `SELECT id, name FROM brands ORDER BY id`

	querySelectCategories = `SELECT id, name FROM categories ORDER BY id`

	querySelectItems = `
		SELECT
			id, sku, name, cost_price, sale_price, stock_quantity,
			brand_id, category_id, is_active, is_adult_content, nudity_detection_score
		FROM items
		ORDER BY id
	`

	querySelectBatches = `
		SELECT id, sku, import_date, total_quantity, remain_quantity
		FROM batches
		ORDER BY id
	`

	querySelectOrders = `
		SELECT id, order_code, customer_id, platform, shipping_location, order_date, status, refund_reason
		FROM orders
		ORDER BY id
	`

	querySelectOrderItems = `
		SELECT id, order_id, item_id, quantity, price_per_unit, discount_amount
		FROM order_items
		ORDER BY id
	`
)

const (
	queryUpsertDailySales = `
		INSERT INTO daily_sales_summary (
			analysis_date, total_orders, total_revenue, total_profit, total_refunds, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (analysis_date) DO UPDATE SET
			total_orders  = EXCLUDED.total_orders,
			total_revenue = EXCLUDED.total_revenue,
			total_profit  = EXCLUDED.total_profit,
			total_refunds = EXCLUDED.total_refunds,
			updated_at    = EXCLUDED.updated_at
	`

	queryDeleteTopSelling = `
		DELETE FROM top_selling_items
		WHERE analysis_date = $1 AND data_range = $2 AND sort_type = $3
	`

	queryInsertTopSelling = `
		INSERT INTO top_selling_items (
			analysis_date, data_range, sort_type, sku, item_name,
			total_quantity_sold, total_revenue, total_profit, rank_position, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	queryDeleteCategorySummary = `
		DELETE FROM category_summary
		WHERE analysis_date = $1 AND data_range = $2 AND sort_type = $3
	`

	queryInsertCategorySummary = `
		INSERT INTO category_summary (
			analysis_date, data_range, sort_type, category_id, category_name,
			total_quantity_sold, total_revenue, total_profit, profit_margin, rank_position, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	queryDeleteBrandSummary = `
		DELETE FROM brand_summary
		WHERE analysis_date = $1 AND data_range = $2 AND sort_type = $3
	`

	queryInsertBrandSummary = `
		INSERT INTO brand_summary (
			analysis_date, data_range, sort_type, brand_id, brand_name,
			total_quantity_sold, total_revenue, total_profit, profit_margin, rank_position, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	queryDeleteRefundAnalysis = `
		DELETE FROM refund_analysis
		WHERE analysis_date = $1 AND data_range = $2 AND sort_type = $3
	`

	queryInsertRefundAnalysis = `
		INSERT INTO refund_analysis (
			analysis_date, data_range, sort_type, sku, item_name,
			total_orders, refund_orders, refund_quantity, refund_rate,
			refund_reason, items_affected, rank_position, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	queryDeleteLowStockAlerts = `
		DELETE FROM low_stock_alerts
		WHERE analysis_date = $1
	`

	queryInsertLowStockAlert = `
		INSERT INTO low_stock_alerts (
			analysis_date, sku, item_name, current_stock, avg_daily_sales,
			days_left, alert_level, alert_type, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	queryDeleteSlowMovingItems = `
		DELETE FROM slow_moving_items
		WHERE analysis_date = $1 AND sort_type = $2
	`

	queryInsertSlowMovingItem = `
		INSERT INTO slow_moving_items (
			analysis_date, sort_type, sku, item_name, brand_name, category_name,
			current_stock, total_quantity_sold, avg_daily_sales, days_without_sales,
			stock_value, potential_loss, rank_position, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
)

const (
	querySelectLatestDailySales = `
		SELECT analysis_date, total_orders, total_revenue, total_profit, total_refunds
		FROM daily_sales_summary
		ORDER BY analysis_date DESC
		LIMIT 1
	`

	querySelectDailySalesByDate = `
		SELECT analysis_date, total_orders, total_revenue, total_profit, total_refunds
		FROM daily_sales_summary
		WHERE analysis_date = $1
	`

	querySelectDailySalesHistory = `
		SELECT analysis_date, total_orders, total_revenue, total_profit, total_refunds
		FROM daily_sales_summary
		WHERE $1::int IS NULL
		   OR analysis_date >= (SELECT MAX(analysis_date) FROM daily_sales_summary) - $1::int
		ORDER BY analysis_date DESC
	`

	querySelectAnalysisDates = `
		SELECT DISTINCT analysis_date
		FROM daily_sales_summary
		ORDER BY analysis_date DESC
	`

	querySelectAnalysisPeriods = `
		SELECT DISTINCT data_range
		FROM top_selling_items
		ORDER BY data_range
	`

	querySelectTopSelling = `
		SELECT analysis_date, data_range, sort_type, sku, item_name,
		       total_quantity_sold, total_revenue, total_profit, rank_position
		FROM top_selling_items
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM top_selling_items))
		  AND data_range = $2 AND sort_type = $3
		ORDER BY rank_position ASC
	`

	querySelectCategorySummary = `
		SELECT analysis_date, data_range, sort_type, category_id, category_name,
		       total_quantity_sold, total_revenue, total_profit, profit_margin, rank_position
		FROM category_summary
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM category_summary))
		  AND data_range = $2 AND sort_type = $3
		ORDER BY rank_position ASC
	`

	querySelectBrandSummary = `
		SELECT analysis_date, data_range, sort_type, brand_id, brand_name,
		       total_quantity_sold, total_revenue, total_profit, profit_margin, rank_position
		FROM brand_summary
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM brand_summary))
		  AND data_range = $2 AND sort_type = $3
		ORDER BY rank_position ASC
	`

	querySelectRefundAnalysis = `
		SELECT analysis_date, data_range, sort_type, sku, item_name,
		       total_orders, refund_orders, refund_quantity, refund_rate,
		       refund_reason, items_affected, rank_position
		FROM refund_analysis
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM refund_analysis))
		  AND data_range = $2 AND sort_type = $3
		ORDER BY rank_position ASC
	`

	querySelectLowStockAlerts = `
		SELECT analysis_date, sku, item_name, current_stock, avg_daily_sales,
		       days_left, alert_level
		FROM low_stock_alerts
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM low_stock_alerts))
		ORDER BY days_left ASC, sku ASC
	`

	querySelectSlowMovingItems = `
		SELECT analysis_date, sort_type, sku, item_name, brand_name, category_name,
		       current_stock, total_quantity_sold, avg_daily_sales, days_without_sales,
		       stock_value, potential_loss, rank_position
		FROM slow_moving_items
		WHERE analysis_date = COALESCE($1, (SELECT MAX(analysis_date) FROM slow_moving_items))
		  AND sort_type = $2
		ORDER BY rank_position ASC
	`
)
