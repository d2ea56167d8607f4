package search

// Sort editor helpers for building the ordered sort-condition list under
// two constraints: a (field, order) pair appears at most once, and a
// field appears at most twice (once per direction).

// SortFields is the fixed priority order in which fields are offered and
// scanned when appending a new condition.
var SortFields = []Field{FieldCreatedAt, FieldText, FieldPriority, FieldUrgency}

// SortOrders is the fixed priority order for directions.
var SortOrders = []Order{OrderDesc, OrderAsc}

// maxPerField: one condition per direction.
const maxPerField = 2

func usedCombinations(sorts []SortCondition, excludeIndex int) map[SortCondition]bool {
	used := make(map[SortCondition]bool, len(sorts))
	for i, s := range sorts {
		if i == excludeIndex {
			continue
		}
		used[s] = true
	}
	return used
}

func fieldUsageCount(sorts []SortCondition, field Field, excludeIndex int) int {
	count := 0
	for i, s := range sorts {
		if i != excludeIndex && s.Field == field {
			count++
		}
	}
	return count
}

// AvailableFields returns the fields the entry at index may switch to:
// fields not already used twice elsewhere, excluding any field whose
// combination with the entry's current order collides with another entry.
func AvailableFields(sorts []SortCondition, index int) []Field {
	if index < 0 || index >= len(sorts) {
		return append([]Field(nil), SortFields...)
	}

	current := sorts[index]
	used := usedCombinations(sorts, index)

	fields := make([]Field, 0, len(SortFields))
	for _, field := range SortFields {
		if fieldUsageCount(sorts, field, index) >= maxPerField {
			continue
		}
		if used[SortCondition{Field: field, Order: current.Order}] {
			continue
		}
		fields = append(fields, field)
	}

	return fields
}

// AvailableOrders returns the directions the entry at index may switch
// to, given its current field.
func AvailableOrders(sorts []SortCondition, index int) []Order {
	if index < 0 || index >= len(sorts) {
		return append([]Order(nil), SortOrders...)
	}

	return AvailableOrdersForField(sorts, sorts[index].Field, index)
}

// AvailableOrdersForField returns the directions that would not collide
// with another entry if the entry at excludeIndex used the given field.
func AvailableOrdersForField(sorts []SortCondition, field Field, excludeIndex int) []Order {
	used := usedCombinations(sorts, excludeIndex)

	orders := make([]Order, 0, len(SortOrders))
	for _, order := range SortOrders {
		if !used[SortCondition{Field: field, Order: order}] {
			orders = append(orders, order)
		}
	}

	return orders
}

// NextAvailableSort returns the first free (field, order) combination in
// priority order, for appending a new condition. The second return value
// is false when every combination is taken.
func NextAvailableSort(sorts []SortCondition) (SortCondition, bool) {
	used := usedCombinations(sorts, -1)

	for _, field := range SortFields {
		if fieldUsageCount(sorts, field, -1) >= maxPerField {
			continue
		}
		for _, order := range SortOrders {
			cond := SortCondition{Field: field, Order: order}
			if !used[cond] {
				return cond, true
			}
		}
	}

	return SortCondition{}, false
}

// SortOnFieldChange computes the replacement condition when the user
// changes the field of the entry at index: the current order is kept if
// still legal, otherwise the first free order for the new field is used.
// The second return value is false when the new field has no legal order.
func SortOnFieldChange(sorts []SortCondition, index int, newField Field, currentOrder Order) (SortCondition, bool) {
	used := usedCombinations(sorts, index)

	keep := SortCondition{Field: newField, Order: currentOrder}
	if !used[keep] {
		return keep, true
	}

	available := AvailableOrdersForField(sorts, newField, index)
	if len(available) == 0 {
		return SortCondition{}, false
	}

	return SortCondition{Field: newField, Order: available[0]}, true
}
