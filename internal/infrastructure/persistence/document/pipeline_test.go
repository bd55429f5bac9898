package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/storefront/analytics/internal/domain/analytics"
)

func TestStageBuilders(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "$unwind", Value: "$vendorOrders"}}, Unwind("vendorOrders"))
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, Limit(5))
	assert.Equal(t,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "sold", Value: -1}, {Key: "_id", Value: 1}}}},
		Sort(Desc("sold"), Asc("_id")),
	)

	g := Group(Ref("userId"), Count("orders"), Sum("spent", Ref("total")))
	require.Len(t, g, 1)
	body := g[0].Value.(bson.D)
	assert.Equal(t, "_id", body[0].Key)
	assert.Equal(t, "$userId", body[0].Value)
	assert.Equal(t, bson.E{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}}, body[1])
}

func TestRecognizedStatus(t *testing.T) {
	e := RecognizedStatus()
	assert.Equal(t, "status", e.Key)
	in := e.Value.(bson.D)[0]
	assert.Equal(t, "$in", in.Key)
	statuses := in.Value.([]string)
	assert.ElementsMatch(t, []string{"confirmed", "processing", "shipped", "delivered"}, statuses)
	assert.NotContains(t, statuses, "cancelled")
}

func TestCreatedIn(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	e := CreatedIn(start, end)
	assert.Equal(t, bson.E{Key: "createdAt", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lt", Value: end},
	}}, e)
}

func TestPeriodLabel(t *testing.T) {
	day := PeriodLabel("createdAt", analytics.GranularityDay, "UTC")
	spec := day[0].Value.(bson.D)
	assert.Equal(t, "$dateToString", day[0].Key)
	assert.Equal(t, "$createdAt", spec[1].Value)

	week := PeriodLabel("createdAt", analytics.GranularityWeek, "Europe/Berlin")
	trunc := week[0].Value.(bson.D)[1].Value.(bson.D)[0]
	assert.Equal(t, "$dateTrunc", trunc.Key)
	truncSpec := trunc.Value.(bson.D)
	assert.Contains(t, truncSpec, bson.E{Key: "unit", Value: "week"})
	assert.Contains(t, truncSpec, bson.E{Key: "startOfWeek", Value: "monday"})
	assert.Contains(t, truncSpec, bson.E{Key: "timezone", Value: "Europe/Berlin"})

	month := PeriodLabel("createdAt", analytics.GranularityMonth, "UTC")
	monthSpec := month[0].Value.(bson.D)[1].Value.(bson.D)[0].Value.(bson.D)
	assert.Contains(t, monthSpec, bson.E{Key: "unit", Value: "month"})
	assert.NotContains(t, monthSpec, bson.E{Key: "startOfWeek", Value: "monday"})
}

func TestFacetBranches(t *testing.T) {
	f := Facet(Branch("total", Group(nil, Count("n"))))
	branches := f[0].Value.(bson.D)
	require.Len(t, branches, 1)
	assert.Equal(t, "total", branches[0].Key)
	assert.Len(t, branches[0].Value.(bson.A), 1)
}

func TestExportFilter(t *testing.T) {
	assert.Empty(t, exportFilter(analytics.ExportFilter{}))

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := exportFilter(analytics.ExportFilter{From: &from})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: from}}}}, f)
}
