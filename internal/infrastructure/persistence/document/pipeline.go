package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/analytics/internal/domain/analytics"
)

// Stage builders. Every facet pipeline is assembled from these so each
// stage has one known shape.

// Ref turns a field name into a field path expression
func Ref(field string) string { return "$" + field }

// Pipeline assembles stages
func Pipeline(stages ...bson.D) mongo.Pipeline { return mongo.Pipeline(stages) }

// Match filters documents
func Match(filter bson.D) bson.D { return bson.D{{Key: "$match", Value: filter}} }

// Unwind flattens an array field, dropping documents where it is missing or empty
func Unwind(field string) bson.D { return bson.D{{Key: "$unwind", Value: Ref(field)}} }

// Lookup is a left outer join on equality of localField and foreignField
func Lookup(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: as},
	}}}
}

// LookupCount joins from on equality and keeps only the number of matches in as.n
func LookupCount(from, localField, foreignField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "pipeline", Value: bson.A{bson.D{{Key: "$count", Value: "n"}}}},
		{Key: "as", Value: as},
	}}}
}

// Group groups by id and applies accumulators
func Group(id any, accumulators ...bson.E) bson.D {
	body := bson.D{{Key: "_id", Value: id}}
	body = append(body, accumulators...)
	return bson.D{{Key: "$group", Value: body}}
}

// Sort orders documents; pass Desc/Asc elements
func Sort(keys ...bson.E) bson.D { return bson.D{{Key: "$sort", Value: bson.D(keys)}} }

// Desc is a descending sort key
func Desc(field string) bson.E { return bson.E{Key: field, Value: -1} }

// Asc is an ascending sort key
func Asc(field string) bson.E { return bson.E{Key: field, Value: 1} }

// Limit caps the number of documents
func Limit(n int) bson.D { return bson.D{{Key: "$limit", Value: int64(n)}} }

// Facet runs named sub-pipelines over the same input
func Facet(facets ...bson.E) bson.D { return bson.D{{Key: "$facet", Value: bson.D(facets)}} }

// Branch names a facet sub-pipeline
func Branch(name string, stages ...bson.D) bson.E {
	return bson.E{Key: name, Value: bson.A(toAny(stages))}
}

// AddFields computes new fields
func AddFields(fields ...bson.E) bson.D { return bson.D{{Key: "$addFields", Value: bson.D(fields)}} }

// Project shapes the output documents
func Project(fields ...bson.E) bson.D { return bson.D{{Key: "$project", Value: bson.D(fields)}} }

// Sum is a $sum accumulator
func Sum(field string, expr any) bson.E {
	return bson.E{Key: field, Value: bson.D{{Key: "$sum", Value: expr}}}
}

// Avg is an $avg accumulator
func Avg(field string, expr any) bson.E {
	return bson.E{Key: field, Value: bson.D{{Key: "$avg", Value: expr}}}
}

// First is a $first accumulator
func First(field string, expr any) bson.E {
	return bson.E{Key: field, Value: bson.D{{Key: "$first", Value: expr}}}
}

// AddToSet is an $addToSet accumulator
func AddToSet(field string, expr any) bson.E {
	return bson.E{Key: field, Value: bson.D{{Key: "$addToSet", Value: expr}}}
}

// Count is a $sum: 1 accumulator
func Count(field string) bson.E { return Sum(field, 1) }

// FirstOf returns the first element of an array field, or fallback when absent or null
func FirstOf(arrayField string, fallback any) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{
		bson.D{{Key: "$arrayElemAt", Value: bson.A{Ref(arrayField), 0}}},
		fallback,
	}}}
}

// Size is the length of an array expression
func Size(expr any) bson.D { return bson.D{{Key: "$size", Value: expr}} }

// RecognizedStatus matches orders counted as revenue
func RecognizedStatus() bson.E {
	return bson.E{Key: "status", Value: bson.D{{Key: "$in", Value: analytics.RecognizedStatusStrings()}}}
}

// CreatedIn matches createdAt in [start, end)
func CreatedIn(start, end time.Time) bson.E {
	return bson.E{Key: "createdAt", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lt", Value: end},
	}}
}

// CreatedSince matches createdAt >= since
func CreatedSince(since time.Time) bson.E {
	return bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: since}}}
}

// PeriodLabel renders the bucket start of field as YYYY-MM-DD in timezone
func PeriodLabel(field string, g analytics.Granularity, timezone string) bson.D {
	date := any(Ref(field))
	if g != analytics.GranularityDay {
		trunc := bson.D{
			{Key: "date", Value: Ref(field)},
			{Key: "unit", Value: g.String()},
			{Key: "timezone", Value: timezone},
		}
		if g == analytics.GranularityWeek {
			trunc = append(trunc, bson.E{Key: "startOfWeek", Value: "monday"})
		}
		date = bson.D{{Key: "$dateTrunc", Value: trunc}}
	}
	return bson.D{{Key: "$dateToString", Value: bson.D{
		{Key: "format", Value: "%Y-%m-%d"},
		{Key: "date", Value: date},
		{Key: "timezone", Value: timezone},
	}}}
}

func toAny(stages []bson.D) []any {
	out := make([]any, len(stages))
	for i, s := range stages {
		out[i] = s
	}
	return out
}
