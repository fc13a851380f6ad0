package analysis

import (
	"errors"
	"testing"

	"github.com/bizlens-lab/bizlens/internal/core/catalog"
	"github.com/bizlens-lab/bizlens/internal/core/report"
	"github.com/stretchr/testify/require"
)

func refundFixture() *catalog.Snapshot {
	items := []catalog.Item{
		testItem(1, "SKU-A", 5.00, 10.00, 100),
		testItem(2, "SKU-B", 2.00, 20.00, 100),
	}
	orders := []catalog.Order{
		// Sales inside the window: A sold 20, B sold 5.
		testOrder(1, 3, "completed", line(1, 20, 10.00)),
		testOrder(2, 4, "completed", line(2, 5, 20.00)),
		// Refunds: two different raw phrasings of the same canonical reason.
		refundedOrder(3, 2, "khách đổi ý", line(1, 2, 10.00)),
		refundedOrder(4, 2, "Khách hủy đơn hàng", line(1, 1, 10.00)),
		refundedOrder(5, 1, "hư hỏng khi nhận", line(2, 4, 20.00)),
	}
	return catalog.NewSnapshot(orders, items, nil, nil, nil)
}

func TestRefundAnalysisByCount(t *testing.T) {
	rows, err := RefundAnalysis(refundFixture(), testAsOf, report.Window7Days, report.SortRefundCount, 10, NewReasonNormalizer())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// SKU-A: both refunded orders normalize to "Khách đổi ý", merged into one group.
	require.Equal(t, "SKU-A", rows[0].SKU)
	require.Equal(t, "Khách đổi ý", rows[0].Reason)
	require.Equal(t, 2, rows[0].RefundCount)
	require.Equal(t, 3, rows[0].RefundQuantity)
	require.Equal(t, 20, rows[0].TotalOrders)
	require.InDelta(t, 10.0, rows[0].RefundRate, 1e-9) // 2 / 20 * 100

	require.Equal(t, "SKU-B", rows[1].SKU)
	require.Equal(t, "Hư hỏng", rows[1].Reason)
	require.Equal(t, 1, rows[1].RefundCount)
	require.InDelta(t, 20.0, rows[1].RefundRate, 1e-9) // 1 / 5 * 100

	require.Equal(t, []int{1, 2}, []int{rows[0].Rank, rows[1].Rank})
}

func TestRefundAnalysisByRate(t *testing.T) {
	rows, err := RefundAnalysis(refundFixture(), testAsOf, report.Window7Days, report.SortRefundRate, 10, NewReasonNormalizer())
	require.NoError(t, err)
	require.Equal(t, "SKU-B", rows[0].SKU, "higher rate ranks first even with fewer refunds")
	require.Equal(t, "SKU-A", rows[1].SKU)
}

func TestRefundAnalysisRateZeroWhenNeverSold(t *testing.T) {
	items := []catalog.Item{testItem(1, "SKU-A", 5.00, 10.00, 100)}
	orders := []catalog.Order{
		refundedOrder(1, 1, "lỗi", line(1, 2, 10.00)),
	}
	snap := catalog.NewSnapshot(orders, items, nil, nil, nil)

	rows, err := RefundAnalysis(snap, testAsOf, report.Window7Days, report.SortRefundRate, 10, NewReasonNormalizer())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Zero(t, rows[0].TotalOrders)
	require.Zero(t, rows[0].RefundRate)
}

func TestRefundAnalysisByReason(t *testing.T) {
	items := []catalog.Item{
		testItem(1, "SKU-A", 5.00, 10.00, 100),
		testItem(2, "SKU-B", 2.00, 20.00, 100),
	}
	orders := []catalog.Order{
		testOrder(1, 3, "completed", line(1, 10, 10.00), line(2, 10, 20.00)),
		refundedOrder(2, 2, "khách đổi ý", line(1, 1, 10.00)),
		refundedOrder(3, 2, "khách hủy", line(2, 2, 20.00)),
		refundedOrder(4, 1, "sai mô tả", line(1, 1, 10.00)),
	}
	snap := catalog.NewSnapshot(orders, items, nil, nil, nil)

	rows, err := RefundAnalysis(snap, testAsOf, report.Window7Days, report.SortRefundReason, 10, NewReasonNormalizer())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// "khách đổi ý" and "khách hủy" collapse into one reason across two items.
	require.Equal(t, "Khách đổi ý", rows[0].Reason)
	require.Equal(t, 2, rows[0].RefundCount)
	require.Equal(t, 2, rows[0].ItemsAffected)
	require.Empty(t, rows[0].SKU)
	require.Empty(t, rows[0].ItemName)
	require.Equal(t, 1, rows[0].Rank)

	require.Equal(t, "Không đúng mô tả", rows[1].Reason)
	require.Equal(t, 1, rows[1].ItemsAffected)
	require.Equal(t, 2, rows[1].Rank)
}

func TestRefundAnalysisInvalidSort(t *testing.T) {
	_, err := RefundAnalysis(refundFixture(), testAsOf, report.Window7Days, report.SortRevenue, 10, NewReasonNormalizer())
	require.Error(t, err)
	require.True(t, errors.Is(err, report.ErrInvalidSortType))
}

func TestRefundAnalysisEmptyWindow(t *testing.T) {
	rows, err := RefundAnalysis(refundFixture(), testAsOf.AddDate(1, 0, 0), report.Window1Day, report.SortRefundCount, 10, NewReasonNormalizer())
	require.NoError(t, err)
	require.Empty(t, rows)
}
