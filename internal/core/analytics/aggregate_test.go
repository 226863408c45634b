package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/redprice-lab/redprice-analytics/internal/api/v1"
)

func TestAggregate_ByCategory(t *testing.T) {
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг",
			line("Контейнер 5л", "Контейнеры", "sup-1", 400, 10),
			line("Тазик малый", "Тазики", "sup-1", 100, 10),
		),
		order("ord-2", "sup-1", "Хозторг",
			line("Контейнер 10л", "Контейнеры", "sup-1", 800, 5),
			line("Тазик большой", "Тазики", "sup-1", 100, 10),
		),
	}

	buckets := Aggregate(orders, Dimensions[DimCategory])

	require.Len(t, buckets, 2)

	// First-seen order: Контейнеры appeared before Тазики.
	require.Equal(t, "Контейнеры", buckets[0].Key)
	require.True(t, dec(8000).Equal(buckets[0].Revenue), "revenue: got %s", buckets[0].Revenue)
	require.True(t, dec(15).Equal(buckets[0].Quantity))
	require.Equal(t, 2, buckets[0].OrderCount)

	require.Equal(t, "Тазики", buckets[1].Key)
	require.True(t, dec(2000).Equal(buckets[1].Revenue))
	require.True(t, dec(20).Equal(buckets[1].Quantity))
	require.Equal(t, 2, buckets[1].OrderCount)
}

func TestAggregate_MissingCategoryFallsBack(t *testing.T) {
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг", line("Насадка", "", "sup-1", 50, 2)),
	}

	buckets := Aggregate(orders, Dimensions[DimCategory])

	require.Len(t, buckets, 1)
	require.Equal(t, FallbackCategory, buckets[0].Key)
	require.Equal(t, FallbackCategory, buckets[0].DisplayName)
}

func TestAggregate_BySupplier(t *testing.T) {
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг", line("Контейнер", "Контейнеры", "sup-1", 400, 10)),
		order("ord-2", "sup-2", "", line("Тазик", "Тазики", "sup-2", 100, 10)),
		order("ord-3", "sup-1", "Хозторг", line("Ведро", "Вёдра", "sup-1", 200, 5)),
	}

	buckets := Aggregate(orders, Dimensions[DimSupplier])

	require.Len(t, buckets, 2)
	require.Equal(t, "sup-1", buckets[0].Key)
	require.Equal(t, "Хозторг", buckets[0].DisplayName)
	require.True(t, dec(5000).Equal(buckets[0].Revenue))
	require.Equal(t, 2, buckets[0].OrderCount)

	require.Equal(t, "sup-2", buckets[1].Key)
	require.Equal(t, FallbackSupplierName, buckets[1].DisplayName)
}

func TestAggregate_ByProduct_CompositeKey(t *testing.T) {
	// Same product name from two suppliers stays in separate buckets.
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг", line("Тазик", "Тазики", "sup-1", 100, 3)),
		order("ord-2", "sup-2", "Пластик", line("Тазик", "Тазики", "sup-2", 90, 4)),
	}

	buckets := Aggregate(orders, Dimensions[DimProduct])

	require.Len(t, buckets, 2)
	require.Equal(t, "Тазик_sup-1", buckets[0].Key)
	require.Equal(t, "Тазик", buckets[0].DisplayName)
	require.Equal(t, "Тазик_sup-2", buckets[1].Key)
}

func TestAggregate_PackQuantities(t *testing.T) {
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг", v1.OrderLineItem{
			ProductName:    "Контейнер",
			Category:       "Контейнеры",
			Price:          dec(50),
			QuantityBoxes:  dec(4),
			QuantityPerBox: dec(12),
			SupplierID:     "sup-1",
		}),
	}

	buckets := Aggregate(orders, Dimensions[DimCategory])

	require.Len(t, buckets, 1)
	require.True(t, dec(48).Equal(buckets[0].Quantity))
	require.True(t, dec(2400).Equal(buckets[0].Revenue))
}

func TestAggregate_EmptyInput(t *testing.T) {
	require.Empty(t, Aggregate(nil, Dimensions[DimCategory]))
	require.Empty(t, Aggregate([]v1.Order{}, Dimensions[DimSupplier]))
	require.Empty(t, Aggregate([]v1.Order{order("ord-1", "sup-1", "Хозторг")}, Dimensions[DimProduct]))
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	orders := []v1.Order{
		order("ord-1", "sup-1", "Хозторг", line("Контейнер", "Контейнеры", "sup-1", 400, 10)),
	}
	before := orders[0].Items[0].Price

	buckets := Aggregate(orders, Dimensions[DimCategory])
	buckets[0].Revenue = decimal.NewFromInt(-1)

	require.True(t, before.Equal(orders[0].Items[0].Price))
	again := Aggregate(orders, Dimensions[DimCategory])
	require.True(t, dec(4000).Equal(again[0].Revenue))
}
