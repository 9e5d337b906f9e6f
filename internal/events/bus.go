package events

import (
	"sync"
	"time"
)

// Kind names a change to persisted project state.
type Kind string

const (
	ScheduleSaved   Kind = "schedule_saved"
	PostUpdated     Kind = "post_updated"
	PostDeleted     Kind = "post_deleted"
	PostArchived    Kind = "post_archived"
	ArticleSaved    Kind = "article_saved"
	ArticleDeleted  Kind = "article_deleted"
	ArticlesRebuilt Kind = "articles_rebuilt"
	ChecklistSaved  Kind = "checklist_saved"
	ConfigUpdated   Kind = "config_updated"
)

type Event struct {
	Kind        Kind      `json:"type"`
	ProjectPath string    `json:"projectPath,omitempty"`
	ID          string    `json:"id,omitempty"`
	At          time.Time `json:"at"`
}

type Handler func(Event)

// Bus delivers events synchronously to registered handlers, in
// registration order. A nil *Bus drops every event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[int]Handler
	order    []int
	next     int
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[int]Handler)}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.handlers[id]; !ok {
			return
		}
		delete(b.handlers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish stamps e and hands it to every subscriber.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}
