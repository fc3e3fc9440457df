package sjonq

import "sort"

// Get materializes the query: the pipeline runs, then offset, limit and
// drop apply in that order, and the shaped working view is returned.
func (q *JSONQuery) Get() (interface{}, error) {
	q.prepare()
	if q.err != nil {
		return nil, q.err
	}
	if q.offsetRecords != 0 {
		q.offset()
	}
	if q.limitRecords != 0 {
		q.limit()
	}
	if len(q.droppedProperties) != 0 {
		q.drop()
	}
	return q.jsonContent, nil
}

// Count returns the element count of the prepared view for sequences and
// the key count for mappings. Any other view has no applicable count and
// reports -1.
func (q *JSONQuery) Count() (int, error) {
	q.prepare()
	if q.err != nil {
		return 0, q.err
	}
	switch v := q.jsonContent.(type) {
	case []interface{}:
		return len(v), nil
	case map[string]interface{}:
		return len(v), nil
	}
	return -1, nil
}

// First returns the first element of the prepared sequence. On a
// non-sequence view it returns no value; on an empty sequence the index
// is out of range.
func (q *JSONQuery) First() (interface{}, error) {
	return q.Nth(0)
}

// Last returns the last element of the prepared sequence.
func (q *JSONQuery) Last() (interface{}, error) {
	return q.Nth(-1)
}

// Nth returns the element at index. Negative indexes count from the end.
// An out-of-range index is fatal, a non-sequence view yields no value.
func (q *JSONQuery) Nth(index int) (interface{}, error) {
	q.prepare()
	if q.err != nil {
		return nil, q.err
	}
	list, ok := q.jsonContent.([]interface{})
	if !ok {
		return nil, nil
	}
	i := index
	if i < 0 {
		i += len(list)
	}
	if i < 0 || i >= len(list) {
		return nil, &ErrIndexOutOfRange{Index: index, Length: len(list)}
	}
	return list[i], nil
}

// GroupBy reshapes the prepared sequence into a mapping from stringified
// attribute value to the elements carrying it. A mapping element whose
// attribute does not resolve aborts the whole operation, leaving the
// prepared view unchanged.
func (q *JSONQuery) GroupBy(attribute string) *JSONQuery {
	q.prepare()
	if q.err != nil {
		return q
	}
	dt := make(map[string]interface{})
	if list, ok := q.jsonContent.([]interface{}); ok {
		for _, v := range list {
			m, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			value := getNestedValue(m, attribute, q.separator)
			if value == nil {
				return q
			}
			key := keyString(value)
			if bucket, ok := dt[key]; ok {
				dt[key] = append(bucket.([]interface{}), m)
			} else {
				dt[key] = []interface{}{m}
			}
		}
	}
	q.jsonContent = dt
	return q
}

// SortKeyFunc extracts the ordering key from an element for Sort. A nil
// key function orders elements by their own values.
type SortKeyFunc func(v interface{}) interface{}

// Sort stably orders the prepared sequence in place by the caller-supplied
// key. A non-sequence view is left untouched.
func (q *JSONQuery) Sort(key SortKeyFunc, reverse bool) *JSONQuery {
	q.prepare()
	if q.err != nil {
		return q
	}
	if list, ok := q.jsonContent.([]interface{}); ok {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if key != nil {
				a, b = key(a), key(b)
			}
			if reverse {
				a, b = b, a
			}
			return lessValues(a, b)
		})
		q.jsonContent = list
	}
	return q
}

// SortBy stably orders the current sequence by a required attribute looked
// up directly on each element. An element that is not a mapping or lacks
// the attribute is fatal. SortBy does not run the pipeline.
func (q *JSONQuery) SortBy(attribute string, reverse bool) *JSONQuery {
	if q.err != nil {
		return q
	}
	list, ok := q.jsonContent.([]interface{})
	if !ok {
		return q
	}
	for _, v := range list {
		m, ok := v.(map[string]interface{})
		if !ok {
			q.err = &ErrAttributeMissing{Attribute: attribute}
			return q
		}
		if _, ok := m[attribute]; !ok {
			q.err = &ErrAttributeMissing{Attribute: attribute}
			return q
		}
	}
	sorted := make([]interface{}, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := sorted[i].(map[string]interface{})[attribute]
		b := sorted[j].(map[string]interface{})[attribute]
		if reverse {
			a, b = b, a
		}
		return lessValues(a, b)
	})
	q.jsonContent = sorted
	return q
}

// Pluck collects the named attribute from every mapping element of the
// prepared view, after re-applying distinct and limit. The attribute is a
// direct key, not a nested path.
func (q *JSONQuery) Pluck(attribute string) ([]interface{}, error) {
	q.prepare()
	if q.err != nil {
		return nil, q.err
	}
	if q.distinctProperty != "" {
		q.distinct()
	}
	if q.limitRecords != 0 {
		q.limit()
	}
	result := make([]interface{}, 0)
	if list, ok := q.jsonContent.([]interface{}); ok {
		for _, v := range list {
			if m, ok := v.(map[string]interface{}); ok {
				if value, ok := m[attribute]; ok && value != nil {
					result = append(result, value)
				}
			}
		}
	}
	return result, nil
}

// Sum reduces the collected numeric set by addition; an empty set sums to
// zero.
func (q *JSONQuery) Sum(properties ...string) (float64, error) {
	floats, err := q.aggregationValues(properties...)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, f := range floats {
		sum += f
	}
	return sum, nil
}

// Min returns the smallest collected value; fatal on an empty set.
func (q *JSONQuery) Min(properties ...string) (float64, error) {
	floats, err := q.aggregationValues(properties...)
	if err != nil {
		return 0, err
	}
	if len(floats) == 0 {
		return 0, &ErrEmptySet{Operation: "Min"}
	}
	min := floats[0]
	for _, f := range floats[1:] {
		if f < min {
			min = f
		}
	}
	return min, nil
}

// Max returns the largest collected value; fatal on an empty set.
func (q *JSONQuery) Max(properties ...string) (float64, error) {
	floats, err := q.aggregationValues(properties...)
	if err != nil {
		return 0, err
	}
	if len(floats) == 0 {
		return 0, &ErrEmptySet{Operation: "Max"}
	}
	max := floats[0]
	for _, f := range floats[1:] {
		if f > max {
			max = f
		}
	}
	return max, nil
}

// Avg returns the arithmetic mean of the collected values; fatal on an
// empty set.
func (q *JSONQuery) Avg(properties ...string) (float64, error) {
	floats, err := q.aggregationValues(properties...)
	if err != nil {
		return 0, err
	}
	if len(floats) == 0 {
		return 0, &ErrEmptySet{Operation: "Avg"}
	}
	var sum float64
	for _, f := range floats {
		sum += f
	}
	return sum / float64(len(floats)), nil
}

// aggregationValues collects the numeric value set the aggregates reduce.
// Distinct and limit re-apply here even though prepare already ran them
// once; offset does not. The collection rules are all-or-nothing per
// element-type branch: a sequence of scalars takes no property name, a
// sequence of mappings takes exactly the first one, and any mapping
// element missing it (or holding a non-number) empties the whole set.
func (q *JSONQuery) aggregationValues(properties ...string) ([]float64, error) {
	q.prepare()
	if q.err != nil {
		return nil, q.err
	}
	if q.distinctProperty != "" {
		q.distinct()
	}
	if q.limitRecords != 0 {
		q.limit()
	}

	floats := make([]float64, 0)
	switch content := q.jsonContent.(type) {
	case []interface{}:
		floats = floatValuesFromList(content, properties)
	case map[string]interface{}:
		if len(properties) == 0 {
			return floats, nil
		}
		value, ok := content[properties[0]]
		if !ok || value == nil {
			return floats, nil
		}
		if f, ok := toFloat(value); ok {
			floats = append(floats, f)
		}
	}
	return floats, nil
}

func floatValuesFromList(list []interface{}, properties []string) []float64 {
	floats := make([]float64, 0, len(list))
	for _, v := range list {
		if f, ok := toFloat(v); ok {
			if len(properties) > 0 {
				return []float64{}
			}
			floats = append(floats, f)
			continue
		}
		if m, ok := v.(map[string]interface{}); ok {
			if len(properties) == 0 {
				return []float64{}
			}
			dv, ok := m[properties[0]]
			if !ok || dv == nil {
				return []float64{}
			}
			f, ok := toFloat(dv)
			if !ok {
				return []float64{}
			}
			floats = append(floats, f)
		}
	}
	return floats
}
