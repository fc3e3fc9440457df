package sjonq

// prepare runs the evaluation pipeline over the working view in its fixed
// order: filtering, distinct de-duplication, projection. Pending filter
// state is kept afterwards; only the group cursor rewinds, so a later
// terminal re-applies the same pending query.
func (q *JSONQuery) prepare() *JSONQuery {
	if q.err != nil {
		return q
	}
	if len(q.queries) > 0 {
		q.processQuery()
	}
	if q.distinctProperty != "" {
		q.distinct()
	}
	if len(q.attributes) > 0 {
		q.only()
	}
	q.queryIndex = 0
	return q
}

func (q *JSONQuery) processQuery() *JSONQuery {
	if list, ok := q.jsonContent.([]interface{}); ok {
		q.jsonContent = q.findInList(list)
	}
	return q
}

// findInList tests each sequence element independently. Elements that are
// not mappings can never match a clause and are dropped.
func (q *JSONQuery) findInList(list []interface{}) []interface{} {
	result := make([]interface{}, 0)
	for _, v := range list {
		if m, ok := v.(map[string]interface{}); ok {
			for _, matched := range q.findInMap(m) {
				result = append(result, matched)
			}
		}
	}
	return result
}

// findInMap evaluates every filter group against one mapping element.
// A clause whose path does not resolve is false but does not stop its
// sibling clauses. An operator missing from the registry aborts the whole
// element, returning whatever had accumulated.
func (q *JSONQuery) findInMap(element map[string]interface{}) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, 1)
	orPassed := false
	for _, group := range q.queries {
		andPassed := true
		for _, clause := range group {
			fn, ok := q.queryMap[clause.operator]
			if !ok {
				return result
			}
			value := getNestedValue(element, clause.key, q.separator)
			if value == nil {
				andPassed = false
				continue
			}
			andPassed = andPassed && fn(value, clause.value)
		}
		orPassed = orPassed || andPassed
	}
	if orPassed {
		result = append(result, element)
	}
	return result
}

// distinct keeps the first occurrence per stringified key value. Elements
// whose key does not resolve are dropped entirely.
func (q *JSONQuery) distinct() *JSONQuery {
	seen := make(map[string]bool)
	dt := make([]interface{}, 0)
	if list, ok := q.jsonContent.([]interface{}); ok {
		for _, v := range list {
			if m, ok := v.(map[string]interface{}); ok {
				value := getNestedValue(m, q.distinctProperty, q.separator)
				if value != nil && !seen[keyString(value)] {
					dt = append(dt, m)
					seen[keyString(value)] = true
				}
			}
		}
	}
	q.jsonContent = dt
	return q
}

// only projects each mapping element down to the requested attributes.
// Attributes that do not resolve are skipped; an element where nothing
// resolves is dropped from the output altogether.
func (q *JSONQuery) only() {
	result := make([]interface{}, 0)
	if list, ok := q.jsonContent.([]interface{}); ok {
		for _, v := range list {
			projected := make(map[string]interface{})
			for _, attribute := range q.attributes {
				node, alias := makeAlias(attribute, q.separator)
				value := getNestedValue(v, node, q.separator)
				if value == nil {
					continue
				}
				projected[alias] = value
			}
			if len(projected) > 0 {
				result = append(result, projected)
			}
		}
	}
	q.jsonContent = result
}

// offset slices the working view from the offset position. The guard
// compares the sequence length against the limit counter, not the offset;
// with limit inactive (0) the comparison always permits slicing. Pinned
// by tests; see TestOffset before touching.
func (q *JSONQuery) offset() {
	list, ok := q.jsonContent.([]interface{})
	if !ok {
		return
	}
	if q.offsetRecords < 0 {
		return
	}
	if len(list) >= q.limitRecords {
		if q.offsetRecords >= len(list) {
			q.jsonContent = make([]interface{}, 0)
		} else {
			q.jsonContent = list[q.offsetRecords:]
		}
	} else {
		q.jsonContent = make([]interface{}, 0)
	}
}

// limit truncates the working view to its first limitRecords elements.
func (q *JSONQuery) limit() {
	list, ok := q.jsonContent.([]interface{})
	if !ok {
		return
	}
	if q.limitRecords <= 0 {
		return
	}
	if len(list) > q.limitRecords {
		q.jsonContent = list[:q.limitRecords]
	}
}

// drop removes the queued node paths from the final working view. The view
// is deep-copied first so dropped keys never disappear from the root the
// view still shares structure with.
func (q *JSONQuery) drop() {
	q.jsonContent = deepCopyValue(q.jsonContent)
	for _, node := range q.droppedProperties {
		q.jsonContent = deleteNestedValue(q.jsonContent, node, q.separator)
	}
}
