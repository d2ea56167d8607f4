// Package search models the URL-encoded view state of the todo list:
// free-text query, equality filters, and the ordered multi-key sort list.
package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/todoflow/core/internal/domain/entities"
)

// Field is a sortable todo attribute.
type Field string

const (
	FieldCreatedAt Field = "createdAt"
	FieldText      Field = "text"
	FieldPriority  Field = "priority"
	FieldUrgency   Field = "urgency"
)

func (f Field) IsValid() bool {
	switch f {
	case FieldCreatedAt, FieldText, FieldPriority, FieldUrgency:
		return true
	default:
		return false
	}
}

// Order is a sort direction.
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

func (o Order) IsValid() bool {
	return o == OrderAsc || o == OrderDesc
}

// SortCondition is one level of the multi-key sort.
type SortCondition struct {
	Field Field `json:"field"`
	Order Order `json:"order"`
}

// DefaultSort is applied when no sort conditions are specified.
var DefaultSort = SortCondition{Field: FieldCreatedAt, Order: OrderDesc}

// Params is the full search/view state. Zero value means "no filters,
// default sort".
type Params struct {
	Query     string
	Completed *bool
	Priority  *entities.Level
	Urgency   *entities.Level
	Sorts     []SortCondition
}

// EffectiveSorts returns the sort list with the default applied.
func (p Params) EffectiveSorts() []SortCondition {
	if len(p.Sorts) == 0 {
		return []SortCondition{DefaultSort}
	}
	return p.Sorts
}

// Normalize strips values equal to their defaults so that equivalent
// states compare and encode identically.
func (p *Params) Normalize() {
	p.Query = strings.TrimSpace(p.Query)
	if len(p.Sorts) == 1 && p.Sorts[0] == DefaultSort {
		p.Sorts = nil
	}
}

// ParseValues decodes search state from URL query values. Absent keys
// take their defaults; malformed values are rejected.
func ParseValues(values url.Values) (Params, error) {
	var p Params

	p.Query = values.Get("q")

	if raw := values.Get("completed"); raw != "" {
		switch raw {
		case "true":
			v := true
			p.Completed = &v
		case "false":
			v := false
			p.Completed = &v
		default:
			return Params{}, fmt.Errorf("invalid completed value %q", raw)
		}
	}

	if raw := values.Get("priority"); raw != "" {
		level := entities.Level(raw)
		if !level.IsValid() {
			return Params{}, fmt.Errorf("invalid priority value %q", raw)
		}
		p.Priority = &level
	}

	if raw := values.Get("urgency"); raw != "" {
		level := entities.Level(raw)
		if !level.IsValid() {
			return Params{}, fmt.Errorf("invalid urgency value %q", raw)
		}
		p.Urgency = &level
	}

	if raw := values.Get("sort"); raw != "" {
		sorts, err := parseSortList(raw)
		if err != nil {
			return Params{}, err
		}
		p.Sorts = sorts
	}

	p.Normalize()

	return p, nil
}

// Values encodes the search state, stripping anything equal to its
// default so that clean states produce clean URLs.
func (p Params) Values() url.Values {
	p.Normalize()

	values := url.Values{}

	if p.Query != "" {
		values.Set("q", p.Query)
	}
	if p.Completed != nil {
		values.Set("completed", fmt.Sprintf("%t", *p.Completed))
	}
	if p.Priority != nil {
		values.Set("priority", string(*p.Priority))
	}
	if p.Urgency != nil {
		values.Set("urgency", string(*p.Urgency))
	}
	if len(p.Sorts) > 0 {
		values.Set("sort", formatSortList(p.Sorts))
	}

	return values
}

func parseSortList(raw string) ([]SortCondition, error) {
	parts := strings.Split(raw, ",")
	sorts := make([]SortCondition, 0, len(parts))

	for _, part := range parts {
		field, order, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid sort entry %q", part)
		}

		cond := SortCondition{Field: Field(field), Order: Order(order)}
		if !cond.Field.IsValid() {
			return nil, fmt.Errorf("invalid sort field %q", field)
		}
		if !cond.Order.IsValid() {
			return nil, fmt.Errorf("invalid sort order %q", order)
		}

		sorts = append(sorts, cond)
	}

	return sorts, nil
}

func formatSortList(sorts []SortCondition) string {
	parts := make([]string, len(sorts))
	for i, s := range sorts {
		parts[i] = string(s.Field) + ":" + string(s.Order)
	}
	return strings.Join(parts, ",")
}
