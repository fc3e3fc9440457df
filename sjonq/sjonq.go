// Package sjonq is a fluent query engine over an in-memory JSON document.
//
// A JSONQuery wraps a parsed document and accumulates pending query state
// (filter groups, projections, shaping counters) through chained builder
// calls. Nothing touches the document until a terminal operation such as
// Get, Count or Sum materializes the result:
//
//	q, err := sjonq.New(content)
//	if err != nil { ... }
//	cheap, err := q.From("items").
//		Where("price", sjonq.OpNotEqual, 0).
//		OrWhere("on_sale", sjonq.OpEqual, true).
//		Limit(10).
//		Get()
//
// A JSONQuery is not safe for concurrent use; give each concurrent consumer
// its own instance via Copy.
package sjonq

import (
	"encoding/json"
	"os"

	"github.com/mitchellh/copystructure"
	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultSeparator is the node path separator used unless WithSeparator
// overrides it.
const DefaultSeparator = "."

// Option configures a JSONQuery at construction time.
type Option func(*JSONQuery)

// WithSeparator overrides the node path separator.
func WithSeparator(separator string) Option {
	return func(q *JSONQuery) {
		if separator != "" {
			q.separator = separator
		}
	}
}

// JSONQuery holds the parsed document and all pending query state. The root
// content is immutable once constructed (More replaces it, Reset restores
// the working view to it); everything else mutates as the chain progresses.
type JSONQuery struct {
	separator   string
	rootContent interface{}
	jsonContent interface{}

	queryMap   map[string]QueryFunc
	queryIndex int

	offsetRecords int
	limitRecords  int

	queries           [][]query
	droppedProperties []string
	attributes        []string
	distinctProperty  string

	err error
}

// New parses a JSON document held in a string.
func New(jsonString string, opts ...Option) (*JSONQuery, error) {
	return NewBytes([]byte(jsonString), opts...)
}

// NewBytes parses a JSON document held in a byte slice.
func NewBytes(content []byte, opts ...Option) (*JSONQuery, error) {
	if !gjson.ValidBytes(content) {
		return nil, &ErrParseFailure{Reason: "invalid JSON content"}
	}
	var root interface{}
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, &ErrParseFailure{Reason: "cannot decode JSON content", InnerError: err}
	}
	q := &JSONQuery{
		separator:   DefaultSeparator,
		rootContent: root,
		jsonContent: root,
		queryMap:    defaultQueries(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// File reads a JSON document from a local file. A non-empty charset names
// the file's text encoding per the IANA registry ("ISO-8859-1",
// "windows-1252", ...); empty means UTF-8.
func File(path, charset string, opts ...Option) (*JSONQuery, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ErrParseFailure{Reason: "cannot read file " + path, InnerError: err}
	}
	decoded, err := DecodeCharset(content, charset)
	if err != nil {
		return nil, err
	}
	return NewBytes(decoded, opts...)
}

// DecodeCharset transcodes content from the named IANA charset to UTF-8.
func DecodeCharset(content []byte, charset string) ([]byte, error) {
	if charset == "" {
		return content, nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, &ErrParseFailure{Reason: "unknown charset " + charset, InnerError: err}
	}
	if enc == unicode.UTF8 {
		return content, nil
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return nil, &ErrParseFailure{Reason: "cannot decode charset " + charset, InnerError: err}
	}
	return decoded, nil
}

// Error reports the first fatal condition recorded on the chain, if any.
func (q *JSONQuery) Error() error { return q.err }

// From focuses the working view on the value at node. An unresolvable path
// is fatal and aborts the rest of the chain.
func (q *JSONQuery) From(node string) *JSONQuery {
	if q.err != nil {
		return q
	}
	value := getNestedValue(q.jsonContent, node, q.separator)
	if value == nil {
		q.err = &ErrPathNotFound{Path: node}
		return q
	}
	q.jsonContent = value
	return q
}

// Find is From followed by materialization.
func (q *JSONQuery) Find(node string) (interface{}, error) {
	return q.From(node).Get()
}

// Where appends a clause to the current filter group. Clauses within a
// group combine with AND; groups combine with OR (see OrWhere).
func (q *JSONQuery) Where(key, operator string, value interface{}) *JSONQuery {
	clause := query{key: key, operator: operator, value: value}
	if q.queryIndex == 0 && len(q.queries) == 0 {
		q.queries = append(q.queries, []query{clause})
	} else {
		q.queries[q.queryIndex] = append(q.queries[q.queryIndex], clause)
	}
	return q
}

// OrWhere starts a new filter group with the given clause.
func (q *JSONQuery) OrWhere(key, operator string, value interface{}) *JSONQuery {
	q.queryIndex++
	q.queries = append(q.queries, []query{{key: key, operator: operator, value: value}})
	return q
}

// WhereEqual is shorthand for Where(key, OpEqual, value).
func (q *JSONQuery) WhereEqual(key string, value interface{}) *JSONQuery {
	return q.Where(key, OpEqual, value)
}

// WhereNotEqual is shorthand for Where(key, OpNotEqual, value).
func (q *JSONQuery) WhereNotEqual(key string, value interface{}) *JSONQuery {
	return q.Where(key, OpNotEqual, value)
}

// WhereNil matches elements whose key equals JSON null.
func (q *JSONQuery) WhereNil(key string) *JSONQuery {
	return q.Where(key, OpEqual, nil)
}

// WhereNotNil matches elements whose key is present and not JSON null.
func (q *JSONQuery) WhereNotNil(key string) *JSONQuery {
	return q.Where(key, OpNotEqual, nil)
}

// WhereIn matches elements whose key is a member of values.
func (q *JSONQuery) WhereIn(key string, values []interface{}) *JSONQuery {
	return q.Where(key, OpIn, values)
}

// WhereNotIn matches elements whose key is not a member of values.
func (q *JSONQuery) WhereNotIn(key string, values []interface{}) *JSONQuery {
	return q.Where(key, OpNotIn, values)
}

// WhereHolds matches elements whose key, a sequence, contains value.
func (q *JSONQuery) WhereHolds(key string, value interface{}) *JSONQuery {
	return q.Where(key, OpHolds, value)
}

// WhereNotHolds matches elements whose key does not contain value.
func (q *JSONQuery) WhereNotHolds(key string, value interface{}) *JSONQuery {
	return q.Where(key, OpNotHolds, value)
}

// WhereStartsWith matches string fields with the given prefix.
func (q *JSONQuery) WhereStartsWith(key, value string) *JSONQuery {
	return q.Where(key, OpStartsWith, value)
}

// WhereEndsWith matches string fields with the given suffix.
func (q *JSONQuery) WhereEndsWith(key, value string) *JSONQuery {
	return q.Where(key, OpEndsWith, value)
}

// WhereContains matches fields containing value, case-insensitively.
func (q *JSONQuery) WhereContains(key, value string) *JSONQuery {
	return q.Where(key, OpContains, value)
}

// WhereStrictContains matches fields containing value, case-sensitively.
func (q *JSONQuery) WhereStrictContains(key, value string) *JSONQuery {
	return q.Where(key, OpStrictContains, value)
}

// WhereNotContains is the negation of WhereContains.
func (q *JSONQuery) WhereNotContains(key, value string) *JSONQuery {
	return q.Where(key, OpNotContains, value)
}

// WhereNotStrictContains is the negation of WhereStrictContains.
func (q *JSONQuery) WhereNotStrictContains(key, value string) *JSONQuery {
	return q.Where(key, OpNotStrictContains, value)
}

// WhereLenEqual matches fields whose length equals value.
func (q *JSONQuery) WhereLenEqual(key string, value int) *JSONQuery {
	return q.Where(key, OpLenEqual, value)
}

// WhereLenNotEqual matches fields whose length differs from value.
func (q *JSONQuery) WhereLenNotEqual(key string, value int) *JSONQuery {
	return q.Where(key, OpLenNotEqual, value)
}

// Select queues projection attributes; each may carry an "as" alias.
func (q *JSONQuery) Select(properties ...string) *JSONQuery {
	q.attributes = append(q.attributes, properties...)
	return q
}

// Only queues projection attributes and materializes the pipeline
// immediately, unlike the lazy Select.
func (q *JSONQuery) Only(properties ...string) *JSONQuery {
	q.attributes = append(q.attributes, properties...)
	return q.prepare()
}

// Offset skips the first offset elements at materialization.
func (q *JSONQuery) Offset(offset int) *JSONQuery {
	q.offsetRecords = offset
	return q
}

// Limit caps the materialized sequence at limit elements.
func (q *JSONQuery) Limit(limit int) *JSONQuery {
	q.limitRecords = limit
	return q
}

// Drop queues node paths to remove from the final working view at Get.
func (q *JSONQuery) Drop(properties ...string) *JSONQuery {
	q.droppedProperties = append(q.droppedProperties, properties...)
	return q
}

// Distinct de-duplicates elements by the given attribute during prepare.
// Elements lacking the attribute are dropped entirely.
func (q *JSONQuery) Distinct(attribute string) *JSONQuery {
	q.distinctProperty = attribute
	return q
}

// Macro registers fn under the given operator name, silently shadowing any
// built-in of the same name for the rest of this instance's life.
func (q *JSONQuery) Macro(operator string, fn QueryFunc) *JSONQuery {
	q.queryMap[operator] = fn
	return q
}

// Reset restores the working view to the root and clears all pending state.
func (q *JSONQuery) Reset() *JSONQuery {
	q.jsonContent = q.rootContent
	q.queries = nil
	q.attributes = nil
	q.droppedProperties = nil
	q.queryIndex = 0
	q.limitRecords = 0
	q.offsetRecords = 0
	q.distinctProperty = ""
	q.err = nil
	return q
}

// Copy returns a fully independent clone: the document tree and pending
// operands are deep-copied and the operator registry map is duplicated
// (predicates are stateless and shared by reference). The clone starts
// from a clean builder on the cloned root.
func (q *JSONQuery) Copy() *JSONQuery {
	clone := &JSONQuery{
		separator:        q.separator,
		rootContent:      deepCopyValue(q.rootContent),
		queryIndex:       q.queryIndex,
		offsetRecords:    q.offsetRecords,
		limitRecords:     q.limitRecords,
		distinctProperty: q.distinctProperty,
		err:              q.err,
	}
	clone.jsonContent = clone.rootContent
	clone.queryMap = make(map[string]QueryFunc, len(q.queryMap))
	for name, fn := range q.queryMap {
		clone.queryMap[name] = fn
	}
	clone.queries = make([][]query, len(q.queries))
	for i, group := range q.queries {
		cg := make([]query, len(group))
		for j, clause := range group {
			cg[j] = query{
				key:      clause.key,
				operator: clause.operator,
				value:    deepCopyValue(clause.value),
			}
		}
		clone.queries[i] = cg
	}
	clone.attributes = append([]string(nil), q.attributes...)
	clone.droppedProperties = append([]string(nil), q.droppedProperties...)
	return clone.Reset()
}

// More commits the current materialized view as the new root for further
// chained queries. Filter groups, projection attributes and drop paths are
// cleared; queryIndex, offset, limit and the distinct key survive the
// commit. Reset clears them.
func (q *JSONQuery) More() *JSONQuery {
	content, err := q.Get()
	if err != nil {
		q.err = err
		return q
	}
	q.rootContent = content
	q.queries = nil
	q.attributes = nil
	q.droppedProperties = nil
	return q
}

// Out hands the current working view to fn and returns whatever it
// produces. No pipeline runs; Out sees the view exactly as-is.
func Out[T any](q *JSONQuery, fn func(content interface{}) T) T {
	return fn(q.jsonContent)
}

// deepCopyValue clones a decoded JSON value tree. Trees built from
// encoding/json never fail to copy; anything uncopyable is returned as-is.
func deepCopyValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	c, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	return c
}
