package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"ticketbot/internal/domain/entity"
	"ticketbot/pkg/errors"
)

type fakeReplier struct {
	mu      sync.Mutex
	replies []Reply
	err     error
}

func (f *fakeReplier) Reply(ctx context.Context, r Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, r)
	return f.err
}

func (f *fakeReplier) last() Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return Reply{}
	}
	return f.replies[len(f.replies)-1]
}

type fakeFiles struct {
	resolved []string
	err      error
}

func (f *fakeFiles) FileURL(ctx context.Context, fileID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.resolved = append(f.resolved, fileID)
	return "https://files.example/" + fileID, nil
}

type submitCall struct {
	ticket entity.Ticket
	refs   []string
}

type fakeSubmitter struct {
	calls []submitCall
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, ticket entity.Ticket, refs []string) (string, error) {
	f.calls = append(f.calls, submitCall{ticket: ticket, refs: refs})
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("T%d", len(f.calls)), nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	created []entity.Ticket
	stored  []*entity.Ticket
	err     error
}

func (f *fakeTicketRepo) Create(ctx context.Context, t *entity.Ticket) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, *t)
	return fmt.Sprintf("ticket-%d", len(f.created)), nil
}

func (f *fakeTicketRepo) ListOldest(ctx context.Context, limit int) ([]*entity.Ticket, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.stored) {
		limit = len(f.stored)
	}
	return f.stored[:limit], nil
}

type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("404 for %s", url)
	}
	return body, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failOn  string
	listErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeStorage) Write(ctx context.Context, path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && bytes.Contains(data, []byte(f.failOn)) {
		return errors.Internal("bucket unavailable", nil)
	}
	f.objects[path] = data
	f.types[path] = contentType
	return nil
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]entity.MediaObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []entity.MediaObject
	for p, data := range f.objects {
		if strings.HasPrefix(p, prefix) {
			out = append(out, entity.MediaObject{Path: p, ContentType: f.types[p], Size: int64(len(data))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (f *fakeStorage) Open(ctx context.Context, o entity.MediaObject) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[o.Path]
	if !ok {
		return nil, fmt.Errorf("no object %s", o.Path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishTicketEvent(ctx context.Context, event string, payload map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}
