package inventory

import (
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Helpers for normalizing loosely-shaped backend documents into the
// strict record structs. Redis returns string fields, Mongo returns
// bson values; everything funnels through here so downstream code
// never branches on source-specific shapes.

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// docID prefers an explicit id field, falling back to the Mongo _id.
func docID(d bson.M) string {
	if v, ok := d["id"]; ok {
		return docValueString(v)
	}
	if oid, ok := d["_id"].(primitive.ObjectID); ok {
		return oid.Hex()
	}
	if v, ok := d["_id"]; ok {
		return docValueString(v)
	}
	return ""
}

func docString(d bson.M, key string) string {
	return docValueString(d[key])
}

func docValueString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func docFloat(d bson.M, key string) float64 {
	switch t := d[key].(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		return parseFloat(t)
	default:
		return 0
	}
}
