package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopN_RanksByRevenue(t *testing.T) {
	buckets := []AggregatedBucket{
		bucket("p1", 500),
		bucket("p2", 100),
		bucket("p3", 300),
		bucket("p4", 700),
		bucket("p5", 200),
	}

	top := TopN(buckets, 3)

	require.Len(t, top, 3)
	require.Equal(t, "p4", top[0].Key)
	require.Equal(t, "p1", top[1].Key)
	require.Equal(t, "p3", top[2].Key)
}

func TestTopN_Bounds(t *testing.T) {
	buckets := []AggregatedBucket{bucket("a", 10), bucket("b", 20)}

	require.Empty(t, TopN(buckets, 0))
	require.Empty(t, TopN(buckets, -3))
	require.Len(t, TopN(buckets, 100), 2)
	require.Empty(t, TopN(nil, 5))
}

func TestTopN_StableTies(t *testing.T) {
	buckets := []AggregatedBucket{
		bucket("first", 300),
		bucket("second", 300),
		bucket("third", 300),
	}

	top := TopN(buckets, 2)

	require.Equal(t, "first", top[0].Key)
	require.Equal(t, "second", top[1].Key)
}

func TestTopN_DoesNotReorderInput(t *testing.T) {
	buckets := []AggregatedBucket{bucket("low", 1), bucket("high", 9)}

	_ = TopN(buckets, 2)

	require.Equal(t, "low", buckets[0].Key)
	require.Equal(t, "high", buckets[1].Key)
}
