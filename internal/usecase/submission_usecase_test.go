package usecase

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memrepo "ticketbot/internal/adapter/repository"
	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/service"
	apperrors "ticketbot/pkg/errors"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func completeTicket() entity.Ticket {
	t := entity.NewTicket(testUser, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	t.Description = "pothole"
	t.Location = &entity.GeoPoint{Latitude: 40, Longitude: -75}
	t.Category = entity.CategoryRoad
	return t
}

type submissionHarness struct {
	uc        *SubmissionUseCase
	repo      *fakeTicketRepo
	storage   *fakeStorage
	fetcher   *fakeFetcher
	publisher *fakePublisher
}

func newSubmissionHarness() *submissionHarness {
	h := &submissionHarness{
		repo:      &fakeTicketRepo{},
		storage:   newFakeStorage(),
		fetcher:   &fakeFetcher{bodies: map[string][]byte{}},
		publisher: &fakePublisher{},
	}
	h.uc = NewSubmissionUseCase(h.repo, h.storage, h.fetcher, h.publisher)
	return h
}

func (h *submissionHarness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.uc.Drain(ctx))
}

func TestSubmitPersistsAndStoresMedia(t *testing.T) {
	h := newSubmissionHarness()
	// The locator lies about the format; the stored extension must not.
	h.fetcher.bodies["https://files.example/a.gif"] = pngBytes
	h.fetcher.bodies["https://files.example/b"] = jpegBytes

	id, err := h.uc.Submit(context.Background(), completeTicket(), []string{
		"https://files.example/a.gif",
		"https://files.example/b",
	})
	require.NoError(t, err)
	assert.Equal(t, "ticket-1", id)
	h.drain(t)

	require.Len(t, h.repo.created, 1)
	assert.Equal(t, "pothole", h.repo.created[0].Description)

	paths := h.storage.paths()
	require.Len(t, paths, 2)
	pattern := regexp.MustCompile(`^tickets/ticket-1/images/[0-9a-f-]{36}\.(png|jpg)$`)
	exts := map[string]string{}
	for _, p := range paths {
		assert.Regexp(t, pattern, p)
		exts[p[len(p)-4:]] = h.storage.types[p]
	}
	assert.Equal(t, map[string]string{".png": "image/png", ".jpg": "image/jpeg"}, exts)

	assert.Equal(t, 1, h.publisher.count(service.EventTicketCreated))
	assert.Equal(t, 2, h.publisher.count(service.EventTicketMediaUploaded))
}

func TestSubmitWithoutMedia(t *testing.T) {
	h := newSubmissionHarness()

	_, err := h.uc.Submit(context.Background(), completeTicket(), nil)
	require.NoError(t, err)
	h.drain(t)

	assert.Len(t, h.repo.created, 1)
	assert.Empty(t, h.fetcher.fetched)
	assert.Empty(t, h.storage.paths())
}

func TestMediaFailureIsIsolated(t *testing.T) {
	h := newSubmissionHarness()
	h.fetcher.bodies["u1"] = pngBytes
	h.fetcher.bodies["u3"] = jpegBytes
	h.fetcher.bodies["u4"] = []byte{}

	_, err := h.uc.Submit(context.Background(), completeTicket(), []string{"u1", "u2", "u3", "u4"})
	require.NoError(t, err)
	h.drain(t)

	assert.Len(t, h.repo.created, 1, "media failures never touch the ticket")
	assert.ElementsMatch(t, []string{"u1", "u2", "u3", "u4"}, h.fetcher.fetched, "one attempt per reference")
	assert.Len(t, h.storage.paths(), 2)
	assert.Equal(t, 2, h.publisher.count(service.EventTicketMediaFailed))
}

func TestStorageWriteFailureIsIsolated(t *testing.T) {
	h := newSubmissionHarness()
	h.fetcher.bodies["good"] = pngBytes
	h.fetcher.bodies["bad"] = append(append([]byte{}, jpegBytes...), []byte("POISON")...)
	h.storage.failOn = "POISON"

	_, err := h.uc.Submit(context.Background(), completeTicket(), []string{"bad", "good"})
	require.NoError(t, err)
	h.drain(t)

	paths := h.storage.paths()
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], ".png")
}

func TestSubmitPersistenceFailure(t *testing.T) {
	h := newSubmissionHarness()
	h.repo.err = assert.AnError
	h.fetcher.bodies["u1"] = pngBytes

	id, err := h.uc.Submit(context.Background(), completeTicket(), []string{"u1"})
	h.drain(t)

	assert.Empty(t, id)
	assert.True(t, apperrors.Is(err, "INTERNAL_ERROR"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, h.fetcher.fetched, "no media transfer without a ticket")
	assert.Zero(t, h.publisher.count(service.EventTicketCreated))
}

func TestSubmitRejectsIncompleteTicket(t *testing.T) {
	cases := map[string]func(*entity.Ticket){
		"no description": func(t *entity.Ticket) { t.Description = "" },
		"no location":    func(t *entity.Ticket) { t.Location = nil },
		"no category":    func(t *entity.Ticket) { t.Category = "" },
		"bad category":   func(t *entity.Ticket) { t.Category = "parking" },
		"no user":        func(t *entity.Ticket) { t.UserID = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newSubmissionHarness()
			ticket := completeTicket()
			mutate(&ticket)

			_, err := h.uc.Submit(context.Background(), ticket, nil)
			assert.True(t, apperrors.Is(err, "INCOMPLETE_TICKET"))
			assert.Empty(t, h.repo.created)
		})
	}
}

type blockingFetcher struct {
	release chan struct{}
	once    sync.Once
	started chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	return pngBytes, nil
}

func TestSubmitDoesNotWaitForMedia(t *testing.T) {
	repo := &fakeTicketRepo{}
	storage := newFakeStorage()
	fetcher := &blockingFetcher{release: make(chan struct{}), started: make(chan struct{})}
	uc := NewSubmissionUseCase(repo, storage, fetcher, nil)

	ctx, cancel := context.WithCancel(context.Background())
	id, err := uc.Submit(ctx, completeTicket(), []string{"slow"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Empty(t, storage.paths())

	// The update context ending must not abort the transfer.
	cancel()
	<-fetcher.started
	close(fetcher.release)

	drainCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	require.NoError(t, uc.Drain(drainCtx))
	assert.Len(t, storage.paths(), 1)
}

func TestDrainHonoursContext(t *testing.T) {
	fetcher := &blockingFetcher{release: make(chan struct{}), started: make(chan struct{})}
	uc := NewSubmissionUseCase(&fakeTicketRepo{}, newFakeStorage(), fetcher, nil)

	_, err := uc.Submit(context.Background(), completeTicket(), []string{"slow"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, uc.Drain(ctx), context.DeadlineExceeded)

	close(fetcher.release)
	require.NoError(t, uc.Drain(context.Background()))
}

func TestDialogueToStorageScenario(t *testing.T) {
	sh := newSubmissionHarness()
	sh.fetcher.bodies["https://files.example/A"] = pngBytes
	sh.fetcher.bodies["https://files.example/B"] = jpegBytes

	replier := &fakeReplier{}
	dialogues := memrepo.NewMemoryDialogueRepository(time.Hour)
	uc := NewTicketCreationUseCase(dialogues, sh.uc, replier, &fakeFiles{}, 2)

	ctx := context.Background()
	events := []DialogueEvent{
		enter(),
		photo("A"),
		photo("B"),
		text("fallen tree"),
		location(59.93, 30.31),
		category(entity.CategoryGreenSpaces),
	}
	for i, ev := range events {
		ev.ConversationID, ev.UserID, ev.MessageID = testChat, testUser, i+1
		require.NoError(t, uc.Handle(ctx, ev))
	}
	sh.drain(t)

	require.Len(t, sh.repo.created, 1)
	assert.Equal(t, entity.CategoryGreenSpaces, sh.repo.created[0].Category)
	assert.ElementsMatch(t, []string{"https://files.example/A", "https://files.example/B"}, sh.fetcher.fetched)
	assert.Len(t, sh.storage.paths(), 2)
	assert.Contains(t, replier.last().Text, "#ticket-1")
}
