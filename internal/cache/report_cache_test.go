package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleKey() ReportKey {
	return ReportKey{
		ItemID:       42,
		WindowStart:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		WindowEnd:    time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		AsOf:         time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		HorizonDays:  30,
		LeadTimeDays: 7,
	}
}

func TestBuildReportKeyIsStable(t *testing.T) {
	assert.Equal(t, buildReportKey(sampleKey()), buildReportKey(sampleKey()))
}

func TestBuildReportKeyEmbedsItemID(t *testing.T) {
	key := buildReportKey(sampleKey())
	assert.True(t, strings.HasPrefix(key, reportKeyPrefix+":42:"),
		"key must carry the item id for prefix invalidation, got %s", key)
}

func TestBuildReportKeyVariesWithParameters(t *testing.T) {
	base := sampleKey()
	seen := map[string]string{reportParamsHash(base): "base"}

	variants := map[string]ReportKey{
		"window start": func(k ReportKey) ReportKey { k.WindowStart = k.WindowStart.AddDate(0, 0, 1); return k }(base),
		"window end":   func(k ReportKey) ReportKey { k.WindowEnd = k.WindowEnd.AddDate(0, 0, -1); return k }(base),
		"as of":        func(k ReportKey) ReportKey { k.AsOf = k.AsOf.Add(time.Hour); return k }(base),
		"horizon":      func(k ReportKey) ReportKey { k.HorizonDays = 60; return k }(base),
		"lead time":    func(k ReportKey) ReportKey { k.LeadTimeDays = 14; return k }(base),
	}

	for name, variant := range variants {
		hash := reportParamsHash(variant)
		if prior, dup := seen[hash]; dup {
			t.Fatalf("changing %s collided with %s", name, prior)
		}
		seen[hash] = name
	}
}

func TestNoopReportCacheAlwaysMisses(t *testing.T) {
	c := NewNoopReportCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleKey(), nil))
	report, hit, err := c.Get(ctx, sampleKey())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, report)
	assert.NoError(t, c.InvalidateItem(ctx, 42))
	assert.NoError(t, c.InvalidateAll(ctx))
}

func TestItemPrefixSeparatesItems(t *testing.T) {
	a := sampleKey()
	b := sampleKey()
	b.ItemID = 421

	prefixA := reportKeyPrefix + ":" + strconv.FormatInt(a.ItemID, 10) + ":"
	assert.True(t, strings.HasPrefix(buildReportKey(a), prefixA))
	assert.False(t, strings.HasPrefix(buildReportKey(b), prefixA),
		"item 421 must not be swept by item 42's invalidation prefix")
}
