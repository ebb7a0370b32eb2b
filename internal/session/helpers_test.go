package session

import (
	"context"
	"sync"

	"artshop/internal/catalog"
	"artshop/pkg/models"
)

type fakeLoader struct {
	mu    sync.Mutex
	calls int
	coll  func() *catalog.Collection
}

func (f *fakeLoader) LoadGalleries(context.Context) *catalog.Collection {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.coll()
}

func (f *fakeLoader) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleCollection() *catalog.Collection {
	return &catalog.Collection{
		Names: []string{"pergamano", "original"},
		Items: map[string][]models.GalleryItem{
			"pergamano": {
				{Src: "/static/pergamano/lace.png", Alt: "Lace", Name: "Lace", Price: 1.50, Description: "description"},
			},
			"original": {
				{Src: "/static/original/Dawn.PNG", Alt: "Dawn", Name: "Dawn", Price: 1.50, Description: "description"},
				{Src: "/static/original/sunset.jpg", Alt: "Sunset", Name: "Sunset", Price: 12.0, Description: "Evening view"},
			},
		},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(_ string, v any) {
	ev, ok := v.(Event)
	if !ok {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *recorder) Last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}
