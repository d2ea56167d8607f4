package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/todoflow/core/internal/domain/entities"
)

// MutationType identifies the kind of local change a mutation carries.
type MutationType string

const (
	MutationInsert MutationType = "insert"
	MutationUpdate MutationType = "update"
	MutationDelete MutationType = "delete"
)

// MutationState is the lifecycle of an optimistic mutation.
type MutationState string

const (
	// StatePending: applied locally, network call not yet acknowledged.
	StatePending MutationState = "pending"
	// StateConfirmed: server acknowledged; local copy reconciled.
	StateConfirmed MutationState = "confirmed"
	// StateRolledBack: network call failed; local copy restored.
	StateRolledBack MutationState = "rolled_back"
)

// Mutation is the handle for one optimistic change. It resolves to
// confirmed or rolled back once the network call completes.
type Mutation struct {
	Type MutationType

	store    *Store
	todoID   string
	state    MutationState
	err      error
	snapshot *entities.Todo
	exec     func(ctx context.Context, todoID string) (*entities.Todo, error)
	done     chan struct{}
}

// TodoID returns the record id the mutation targets. For inserts this is
// the provisional local id until the server assigns the canonical one.
func (m *Mutation) TodoID() string {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.todoID
}

// State returns the mutation's current lifecycle state.
func (m *Mutation) State() MutationState {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.state
}

// Err returns the failure that rolled the mutation back, if any.
func (m *Mutation) Err() error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return m.err
}

// Done is closed once the mutation is confirmed or rolled back.
func (m *Mutation) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the mutation resolves and returns its error.
func (m *Mutation) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithOnError installs a callback invoked whenever a mutation rolls
// back. The callback runs outside the store lock.
func WithOnError(fn func(*Mutation)) StoreOption {
	return func(s *Store) {
		s.onError = fn
	}
}

// Store is a local, observable copy of the session user's todos. Reads
// are served from memory; mutations apply locally first and reconcile
// against the server response in the background. Mutations for the same
// record are issued strictly in invocation order; mutations for
// different records may complete in any order.
type Store struct {
	api     *Client
	onError func(*Mutation)

	mu      sync.Mutex
	todos   map[string]*entities.Todo
	queues  map[string][]*Mutation
	subs    map[int]func()
	nextSub int
	version uint64
	loaded  bool

	wg sync.WaitGroup
}

// NewStore creates a store bound to one API session. Call Load before
// reading or mutating.
func NewStore(api *Client, opts ...StoreOption) *Store {
	s := &Store{
		api:    api,
		todos:  make(map[string]*entities.Todo),
		queues: make(map[string][]*Mutation),
		subs:   make(map[int]func()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load fetches the full list and seeds the collection. A record without
// an id poisons the whole load: the fetch is rejected and the local
// state is left untouched.
func (s *Store) Load(ctx context.Context) error {
	todos, err := s.api.List(ctx)
	if err != nil {
		return fmt.Errorf("load todos: %w", err)
	}

	seeded := make(map[string]*entities.Todo, len(todos))
	for i := range todos {
		if todos[i].ID == "" {
			return entities.ErrMissingID
		}
		todo := todos[i]
		seeded[todo.ID] = &todo
	}

	s.mu.Lock()
	s.todos = seeded
	s.loaded = true
	s.version++
	s.mu.Unlock()

	s.notify()

	return nil
}

// Loaded reports whether the initial list fetch has completed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns a copy of one record.
func (s *Store) Get(id string) (entities.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return entities.Todo{}, false
	}
	return *todo, true
}

// All returns copies of every record in the collection.
func (s *Store) All() []entities.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]entities.Todo, 0, len(s.todos))
	for _, todo := range s.todos {
		todos = append(todos, *todo)
	}
	return todos
}

// Len returns the number of records in the collection.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

// Version increments on every collection change.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Listeners run outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Insert adds the draft to the collection immediately and creates it on
// the server in the background. A draft without an id gets a provisional
// one, replaced by the server-assigned id on confirmation.
func (s *Store) Insert(draft entities.Todo) (*Mutation, error) {
	draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if draft.ID == "" {
		draft.ID = uuid.NewString()
	}

	req := CreateRequest{
		Text:          draft.Text,
		Priority:      draft.Priority,
		Urgency:       draft.Urgency,
		EstimatedTime: draft.EstimatedTime,
		ActualTime:    draft.ActualTime,
	}

	m := &Mutation{
		Type:   MutationInsert,
		store:  s,
		todoID: draft.ID,
		state:  StatePending,
		done:   make(chan struct{}),
		exec: func(ctx context.Context, _ string) (*entities.Todo, error) {
			return s.api.Create(ctx, req)
		},
	}

	s.mu.Lock()
	local := draft
	s.todos[draft.ID] = &local
	s.version++
	s.enqueueLocked(m)
	s.mu.Unlock()

	s.notify()

	return m, nil
}

// Update applies the mutator to a copy of the record, stores the result
// locally, and sends exactly the changed fields to the server.
func (s *Store) Update(id string, mutate func(*entities.Todo)) (*Mutation, error) {
	s.mu.Lock()

	existing, ok := s.todos[id]
	if !ok {
		s.mu.Unlock()
		return nil, entities.ErrTodoNotFound
	}

	snapshot := *existing
	modified := *existing
	mutate(&modified)
	modified.ID = snapshot.ID
	modified.UserID = snapshot.UserID
	modified.Normalize()
	if err := modified.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	req := diff(snapshot, modified)

	m := &Mutation{
		Type:     MutationUpdate,
		store:    s,
		todoID:   id,
		state:    StatePending,
		snapshot: &snapshot,
		done:     make(chan struct{}),
		exec: func(ctx context.Context, todoID string) (*entities.Todo, error) {
			return s.api.Update(ctx, todoID, req)
		},
	}

	*existing = modified
	s.version++
	s.enqueueLocked(m)
	s.mu.Unlock()

	s.notify()

	return m, nil
}

// Delete removes the record locally and deletes it on the server in the
// background.
func (s *Store) Delete(id string) (*Mutation, error) {
	s.mu.Lock()

	existing, ok := s.todos[id]
	if !ok {
		s.mu.Unlock()
		return nil, entities.ErrTodoNotFound
	}

	snapshot := *existing

	m := &Mutation{
		Type:     MutationDelete,
		store:    s,
		todoID:   id,
		state:    StatePending,
		snapshot: &snapshot,
		done:     make(chan struct{}),
		exec: func(ctx context.Context, todoID string) (*entities.Todo, error) {
			return nil, s.api.Delete(ctx, todoID)
		},
	}

	delete(s.todos, id)
	s.version++
	s.enqueueLocked(m)
	s.mu.Unlock()

	s.notify()

	return m, nil
}

// Wait blocks until every in-flight mutation has resolved.
func (s *Store) Wait() {
	s.wg.Wait()
}

// enqueueLocked appends the mutation to its record's queue and starts a
// worker if none is draining that record. Caller holds s.mu.
func (s *Store) enqueueLocked(m *Mutation) {
	key := m.todoID
	s.queues[key] = append(s.queues[key], m)

	if len(s.queues[key]) == 1 {
		s.wg.Add(1)
		go s.drain(key)
	}
}

// drain issues one record's mutations in order. Network calls run
// without the lock; state transitions take it.
func (s *Store) drain(key string) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		queue := s.queues[key]
		if len(queue) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		m := queue[0]
		todoID := m.todoID
		s.mu.Unlock()

		result, err := m.exec(context.Background(), todoID)

		var failed []*Mutation
		s.mu.Lock()
		if err != nil {
			failed = s.failLocked(key, m, err)
		} else {
			// A confirmed insert may move the queue under the
			// server-assigned id; keep draining under the new key.
			key = s.confirmLocked(key, m, result)
		}
		s.mu.Unlock()

		s.notify()

		for _, fm := range failed {
			if s.onError != nil {
				s.onError(fm)
			}
			close(fm.done)
		}
		if err == nil {
			close(m.done)
		}
		if err != nil {
			return
		}
	}
}

// confirmLocked reconciles the server response into the collection and
// returns the key the record's queue now lives under. The server copy
// wins outright unless later optimistic mutations for the record are
// still queued, in which case only server-computed fields (id,
// timestamps) are adopted.
func (s *Store) confirmLocked(key string, m *Mutation, server *entities.Todo) string {
	queue := s.queues[key]
	s.queues[key] = queue[1:]
	m.state = StateConfirmed

	if m.Type == MutationDelete || server == nil {
		return key
	}

	localID := m.todoID
	if server.ID != localID {
		// Server assigned the canonical id; re-key the record and any
		// queued mutations that still reference the provisional one.
		if local, ok := s.todos[localID]; ok {
			delete(s.todos, localID)
			local.ID = server.ID
			s.todos[server.ID] = local
		}
		for _, qm := range s.queues[key] {
			qm.todoID = server.ID
		}
		s.queues[server.ID] = s.queues[key]
		delete(s.queues, key)
		m.todoID = server.ID
		key = server.ID
	}

	local, ok := s.todos[server.ID]
	if !ok {
		return key
	}

	if len(s.queues[server.ID]) == 0 {
		*local = *server
	} else {
		local.ID = server.ID
		local.UserID = server.UserID
		local.CreatedAt = server.CreatedAt
		local.UpdatedAt = server.UpdatedAt
	}

	s.version++

	return key
}

// failLocked rolls the failed mutation back to its pre-mutation snapshot
// and aborts everything queued behind it, since those changes were built
// on state the server rejected. Returns the mutations to report.
func (s *Store) failLocked(key string, m *Mutation, err error) []*Mutation {
	queue := s.queues[key]
	delete(s.queues, key)

	m.state = StateRolledBack
	m.err = err

	switch m.Type {
	case MutationInsert:
		delete(s.todos, m.todoID)
	case MutationUpdate:
		// Restore unconditionally: an aborted delete behind this update
		// may have removed the record from the map.
		restored := *m.snapshot
		s.todos[m.todoID] = &restored
	case MutationDelete:
		restored := *m.snapshot
		s.todos[restored.ID] = &restored
	}

	for _, qm := range queue[1:] {
		qm.state = StateRolledBack
		qm.err = fmt.Errorf("aborted by earlier failed %s: %w", m.Type, err)
	}

	s.version++

	return queue
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// diff builds the partial update carrying exactly the fields that
// changed between the two versions.
func diff(before, after entities.Todo) UpdateRequest {
	var req UpdateRequest

	if before.Text != after.Text {
		text := after.Text
		req.Text = &text
	}
	if before.Completed != after.Completed {
		completed := after.Completed
		req.Completed = &completed
	}
	if before.Priority != after.Priority {
		priority := after.Priority
		req.Priority = &priority
	}
	if before.Urgency != after.Urgency {
		urgency := after.Urgency
		req.Urgency = &urgency
	}
	if !intPtrEqual(before.EstimatedTime, after.EstimatedTime) {
		req.EstimatedTime = after.EstimatedTime
	}
	if !intPtrEqual(before.ActualTime, after.ActualTime) {
		req.ActualTime = after.ActualTime
	}

	return req
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
