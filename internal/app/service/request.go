package service

import (
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/sjonq/sjonq-go/sjonq"
)

// errBadRequest marks requests the service could not even interpret, as
// opposed to queries that interpreted fine but failed to evaluate.
type errBadRequest struct {
	reason string
}

func (e *errBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.reason)
}

// runQuery interprets the request body as a query description and executes
// it against a deep copy of the base document.
//
// Body shape (all fields optional):
//
//	{
//	  "from": "items",
//	  "where": [[{"key": "price", "op": "=", "value": 10}]],
//	  "select": ["name", "price as cost"],
//	  "distinct": "id",
//	  "sort": {"attribute": "price", "reverse": true},
//	  "offset": 2,
//	  "limit": 5,
//	  "drop": ["internal_id"],
//	  "group_by": "city",
//	  "pluck": "name",
//	  "aggregate": {"op": "sum", "property": "price"},
//	  "terminal": "get" | "count" | "first" | "last" | "nth",
//	  "nth": -1
//	}
//
// The outer "where" array lists OR-combined groups; each inner array lists
// AND-combined clauses.
func (qs *QueryService) runQuery(r *http.Request) (interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &errBadRequest{reason: "cannot read request body"}
	}
	defer r.Body.Close()

	if !gjson.ValidBytes(body) {
		return nil, &errBadRequest{reason: "request body is not valid JSON"}
	}
	doc := gjson.ParseBytes(body)

	q := qs.base.Copy()

	if from := doc.Get("from"); from.Exists() {
		q.From(from.String())
	}

	if where := doc.Get("where"); where.IsArray() {
		for gi, group := range where.Array() {
			if !group.IsArray() {
				return nil, &errBadRequest{reason: "where groups must be arrays of clauses"}
			}
			for ci, clause := range group.Array() {
				key := clause.Get("key").String()
				op := clause.Get("op").String()
				if key == "" || op == "" {
					return nil, &errBadRequest{reason: "where clauses need key and op"}
				}
				value := clause.Get("value").Value()
				if gi > 0 && ci == 0 {
					q.OrWhere(key, op, value)
				} else {
					q.Where(key, op, value)
				}
			}
		}
	}

	if sel := doc.Get("select"); sel.IsArray() {
		for _, attr := range sel.Array() {
			q.Select(attr.String())
		}
	}
	if distinct := doc.Get("distinct"); distinct.Exists() {
		q.Distinct(distinct.String())
	}
	if offset := doc.Get("offset"); offset.Exists() {
		q.Offset(int(offset.Int()))
	}
	if limit := doc.Get("limit"); limit.Exists() {
		q.Limit(int(limit.Int()))
	}
	if drop := doc.Get("drop"); drop.IsArray() {
		for _, node := range drop.Array() {
			q.Drop(node.String())
		}
	}
	if srt := doc.Get("sort"); srt.Exists() {
		attribute := srt.Get("attribute").String()
		reverse := srt.Get("reverse").Bool()
		q.Sort(elementKey(attribute), reverse)
	}
	if group := doc.Get("group_by"); group.Exists() {
		q.GroupBy(group.String())
	}

	if agg := doc.Get("aggregate"); agg.Exists() {
		return qs.runAggregate(q, agg)
	}
	if pluck := doc.Get("pluck"); pluck.Exists() {
		return q.Pluck(pluck.String())
	}

	switch doc.Get("terminal").String() {
	case "", "get":
		return q.Get()
	case "count":
		return q.Count()
	case "first":
		return q.First()
	case "last":
		return q.Last()
	case "nth":
		return q.Nth(int(doc.Get("nth").Int()))
	default:
		return nil, &errBadRequest{reason: "unknown terminal " + doc.Get("terminal").String()}
	}
}

func (qs *QueryService) runAggregate(q *sjonq.JSONQuery, agg gjson.Result) (interface{}, error) {
	var properties []string
	if p := agg.Get("property"); p.Exists() {
		properties = append(properties, p.String())
	}
	switch agg.Get("op").String() {
	case "sum":
		return q.Sum(properties...)
	case "min":
		return q.Min(properties...)
	case "max":
		return q.Max(properties...)
	case "avg":
		return q.Avg(properties...)
	default:
		return nil, &errBadRequest{reason: "unknown aggregate op " + agg.Get("op").String()}
	}
}

// elementKey orders Sort by a direct attribute of each mapping element;
// non-mapping elements order by their own value.
func elementKey(attribute string) sjonq.SortKeyFunc {
	if attribute == "" {
		return nil
	}
	return func(v interface{}) interface{} {
		if m, ok := v.(map[string]interface{}); ok {
			return m[attribute]
		}
		return v
	}
}
