package client

import (
	"sort"
	"strings"
	"sync"

	"github.com/todoflow/core/client/search"
	"github.com/todoflow/core/internal/domain/entities"
)

// Derive computes the filtered, sorted sequence of todos for the given
// search state. It is pure: filters apply in a fixed order (completed,
// priority, urgency, text query), then a stable multi-key sort.
func Derive(todos []entities.Todo, params search.Params) []entities.Todo {
	filtered := make([]entities.Todo, 0, len(todos))

	query := strings.ToLower(strings.TrimSpace(params.Query))

	for _, todo := range todos {
		if params.Completed != nil && todo.Completed != *params.Completed {
			continue
		}
		if params.Priority != nil && todo.Priority != *params.Priority {
			continue
		}
		if params.Urgency != nil && todo.Urgency != *params.Urgency {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(todo.Text), query) {
			continue
		}
		filtered = append(filtered, todo)
	}

	conditions := params.EffectiveSorts()

	sort.SliceStable(filtered, func(i, j int) bool {
		for _, cond := range conditions {
			c := compareByField(&filtered[i], &filtered[j], cond.Field)
			if c == 0 {
				continue
			}
			if cond.Order == search.OrderDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	return filtered
}

func compareByField(a, b *entities.Todo, field search.Field) int {
	switch field {
	case search.FieldCreatedAt:
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return 1
		}
		return 0
	case search.FieldText:
		return strings.Compare(a.Text, b.Text)
	case search.FieldPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case search.FieldUrgency:
		return a.Urgency.Rank() - b.Urgency.Rank()
	default:
		return 0
	}
}

// View is a live projection of a Store under a search state. It
// recomputes from the local collection only, never from the API.
type View struct {
	store *Store

	mu       sync.Mutex
	params   search.Params
	derived  []entities.Todo
	storeVer uint64
	stale    bool
	subs     map[int]func()
	nextSub  int
	unwatch  func()
}

// NewView creates a view over the store with the given initial search
// state.
func NewView(store *Store, params search.Params) *View {
	params.Normalize()

	v := &View{
		store:  store,
		params: params,
		stale:  true,
		subs:   make(map[int]func()),
	}

	v.unwatch = store.Subscribe(v.invalidate)

	return v
}

// SetParams replaces the search state and re-derives.
func (v *View) SetParams(params search.Params) {
	params.Normalize()

	v.mu.Lock()
	v.params = params
	v.stale = true
	v.mu.Unlock()

	v.fanout()
}

// Params returns the current search state.
func (v *View) Params() search.Params {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params
}

// Todos returns the derived sequence, recomputing if the store or the
// search state changed since the last call.
func (v *View) Todos() []entities.Todo {
	v.mu.Lock()
	storeVer := v.store.Version()
	if !v.stale && storeVer == v.storeVer {
		derived := v.derived
		v.mu.Unlock()
		return derived
	}
	params := v.params
	v.mu.Unlock()

	derived := Derive(v.store.All(), params)

	v.mu.Lock()
	v.derived = derived
	v.storeVer = storeVer
	v.stale = false
	v.mu.Unlock()

	return derived
}

// Subscribe registers a listener invoked whenever the view may have
// changed. Returns the unsubscribe function.
func (v *View) Subscribe(fn func()) func() {
	v.mu.Lock()
	id := v.nextSub
	v.nextSub++
	v.subs[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// Close detaches the view from the store.
func (v *View) Close() {
	if v.unwatch != nil {
		v.unwatch()
		v.unwatch = nil
	}
}

func (v *View) invalidate() {
	v.mu.Lock()
	v.stale = true
	v.mu.Unlock()

	v.fanout()
}

func (v *View) fanout() {
	v.mu.Lock()
	listeners := make([]func(), 0, len(v.subs))
	for _, fn := range v.subs {
		listeners = append(listeners, fn)
	}
	v.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
