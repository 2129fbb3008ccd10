package bot

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/infrastructure/conversation"
	"ticketbot/internal/infrastructure/ratelimit"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/errors"
)

type syncDispatcher struct{}

func (syncDispatcher) Dispatch(conversationID int64, job conversation.Job) {
	job(context.Background())
}

type sentMedia struct {
	name        string
	contentType string
	body        []byte
}

type fakeMessenger struct {
	mu        sync.Mutex
	replies   []usecase.Reply
	locations []entity.GeoPoint
	media     []sentMedia
}

func (f *fakeMessenger) Reply(ctx context.Context, r usecase.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, r)
	return nil
}

func (f *fakeMessenger) SendLocation(ctx context.Context, chatID int64, p entity.GeoPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, p)
	return nil
}

func (f *fakeMessenger) SendMedia(ctx context.Context, chatID int64, name, contentType string, r io.Reader) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media = append(f.media, sentMedia{name: name, contentType: contentType, body: body})
	return nil
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.replies {
		out = append(out, r.Text)
	}
	return out
}

type fakeUsers struct {
	users map[int64]*entity.User
	saved []*entity.User
}

func (f *fakeUsers) Save(ctx context.Context, user *entity.User) error {
	f.saved = append(f.saved, user)
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

type fakeDialogue struct {
	events []usecase.DialogueEvent
}

func (f *fakeDialogue) Handle(ctx context.Context, ev usecase.DialogueEvent) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeTickets struct {
	tickets []*entity.Ticket
}

func (f *fakeTickets) Create(ctx context.Context, t *entity.Ticket) (string, error) {
	return "", nil
}

func (f *fakeTickets) ListOldest(ctx context.Context, limit int) ([]*entity.Ticket, error) {
	if limit > len(f.tickets) {
		limit = len(f.tickets)
	}
	return f.tickets[:limit], nil
}

type fakeStorage struct {
	objects map[string][]byte
}

func (f *fakeStorage) Write(ctx context.Context, path string, data []byte, contentType string) error {
	f.objects[path] = data
	return nil
}

func (f *fakeStorage) List(ctx context.Context, prefix string) ([]entity.MediaObject, error) {
	var out []entity.MediaObject
	for p, data := range f.objects {
		if len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, entity.MediaObject{Path: p, ContentType: "image/png", Size: int64(len(data))})
		}
	}
	return out, nil
}

func (f *fakeStorage) Open(ctx context.Context, o entity.MediaObject) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.objects[o.Path])), nil
}

type routerHarness struct {
	router    *Router
	messenger *fakeMessenger
	users     *fakeUsers
	dialogue  *fakeDialogue
	tickets   *fakeTickets
	storage   *fakeStorage
}

func newRouterHarness(limiter Limiter) *routerHarness {
	h := &routerHarness{
		messenger: &fakeMessenger{},
		users:     &fakeUsers{users: map[int64]*entity.User{}},
		dialogue:  &fakeDialogue{},
		tickets:   &fakeTickets{},
		storage:   &fakeStorage{objects: map[string][]byte{}},
	}
	moderation := usecase.NewModerationUseCase(h.tickets, h.storage)
	h.router = NewRouter(Deps{
		Dialogue:   h.dialogue,
		Moderation: NewModerationHandler(moderation, h.messenger, 10),
		Users:      h.users,
		Messenger:  h.messenger,
		Dispatcher: syncDispatcher{},
		Limiter:    limiter,
	})
	return h
}

func TestRouterForwardsDialogueEvents(t *testing.T) {
	h := newRouterHarness(nil)

	h.router.HandleUpdate(tgbotapi.Update{Message: command("add")})
	h.router.HandleUpdate(tgbotapi.Update{Message: message("tree fell")})
	h.router.HandleUpdate(tgbotapi.Update{EditedMessage: message("tree fell down")})

	require.Len(t, h.dialogue.events, 3)
	assert.Equal(t, usecase.EventEnter, h.dialogue.events[0].Kind)
	assert.Equal(t, "tree fell", h.dialogue.events[1].Text)
	assert.Equal(t, "tree fell down", h.dialogue.events[2].Text)
}

func TestRouterStartSavesUser(t *testing.T) {
	h := newRouterHarness(nil)
	msg := command("start")
	msg.From.UserName = "ann_k"
	msg.From.LanguageCode = "en"

	h.router.HandleUpdate(tgbotapi.Update{Message: msg})

	require.Len(t, h.users.saved, 1)
	saved := h.users.saved[0]
	assert.Equal(t, userID, saved.ID)
	assert.Equal(t, "ann_k", saved.Username)
	assert.Empty(t, saved.Role, "start never grants a role")
	assert.Equal(t, []string{"Hi, Ann! I collect reports about problems in the city. Send /add to report one."}, h.messenger.texts())
	assert.Empty(t, h.dialogue.events)
}

func TestRouterModerationRequiresRole(t *testing.T) {
	h := newRouterHarness(nil)

	h.router.HandleUpdate(tgbotapi.Update{Message: command("mod")})
	assert.Equal(t, []string{usecase.MsgNotAllowed}, h.messenger.texts())

	h.users.users[userID] = &entity.User{ID: userID, Role: "citizen"}
	h.router.HandleUpdate(tgbotapi.Update{Message: command("mod")})
	assert.Equal(t, []string{usecase.MsgNotAllowed, usecase.MsgNotAllowed}, h.messenger.texts())
}

func TestRouterModerationListsTickets(t *testing.T) {
	h := newRouterHarness(nil)
	h.users.users[userID] = &entity.User{ID: userID, Role: entity.RoleModerator}
	h.tickets.tickets = []*entity.Ticket{{
		ID:          "abc",
		UserID:      9,
		Description: "overflowing bins",
		Location:    &entity.GeoPoint{Latitude: 1, Longitude: 2},
		Category:    entity.CategoryGarbage,
		CreatedAt:   time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}}
	h.storage.objects["tickets/abc/images/1.png"] = []byte("png")

	h.router.HandleUpdate(tgbotapi.Update{Message: command("mod")})

	texts := h.messenger.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "#abc")
	assert.Contains(t, texts[0], "overflowing bins")
	assert.Contains(t, texts[0], "2024-05-01T08:00:00Z")
	assert.Equal(t, []entity.GeoPoint{{Latitude: 1, Longitude: 2}}, h.messenger.locations)
	require.Len(t, h.messenger.media, 1)
	assert.Equal(t, "1.png", h.messenger.media[0].name)
	assert.Equal(t, []byte("png"), h.messenger.media[0].body)
}

func TestRouterModerationWithoutTickets(t *testing.T) {
	h := newRouterHarness(nil)
	h.users.users[userID] = &entity.User{ID: userID, Role: entity.RoleAdmin}

	h.router.HandleUpdate(tgbotapi.Update{Message: command("mod")})

	assert.Equal(t, []string{usecase.MsgNoTickets}, h.messenger.texts())
}

func TestRouterThrottlesWithSingleNotice(t *testing.T) {
	limiter := ratelimit.NewRateLimiter(2)
	h := newRouterHarness(limiter)

	for i := 0; i < 5; i++ {
		h.router.HandleUpdate(tgbotapi.Update{Message: message("spam")})
	}

	assert.Len(t, h.dialogue.events, 2)
	assert.Equal(t, []string{usecase.MsgTooManyRequests}, h.messenger.texts())
}

func TestRouterIgnoresUnsupportedUpdates(t *testing.T) {
	h := newRouterHarness(nil)

	h.router.HandleUpdate(tgbotapi.Update{})
	h.router.HandleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "1"}})

	assert.Empty(t, h.dialogue.events)
	assert.Empty(t, h.messenger.texts())
}
