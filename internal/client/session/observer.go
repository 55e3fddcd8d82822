package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
)

// Observer is told about every session change. s is nil after logout.
// Observers run synchronously on the goroutine that changed the session,
// before that call returns, and must not call back into Store's mutating
// methods.
type Observer func(ctx context.Context, s *models.Session)

type observers struct {
	mu     sync.Mutex
	nextID int
	order  []int
	fns    map[int]Observer
}

func (o *observers) add(fn Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]Observer)
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn
	o.order = append(o.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.fns, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// notify calls observers in subscription order. Each gets its own copy of s.
func (o *observers) notify(ctx context.Context, s *models.Session) {
	o.mu.Lock()
	fns := make([]Observer, 0, len(o.order))
	for _, id := range o.order {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, clone(s))
	}
}

func clone(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
