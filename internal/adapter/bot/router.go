package bot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/internal/infrastructure/conversation"
	"ticketbot/internal/infrastructure/ratelimit"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
)

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	usecase.Replier
	SendLocation(ctx context.Context, chatID int64, point entity.GeoPoint) error
	SendMedia(ctx context.Context, chatID int64, name, contentType string, r io.Reader) error
}

type DialogueHandler interface {
	Handle(ctx context.Context, ev usecase.DialogueEvent) error
}

type Dispatcher interface {
	Dispatch(conversationID int64, job conversation.Job)
}

type Limiter interface {
	Allow(userID int64, action string) (bool, time.Duration)
}

type Deps struct {
	Dialogue   DialogueHandler
	Moderation *ModerationHandler
	Users      repository.UserRepository
	Messenger  Messenger
	Dispatcher Dispatcher
	Limiter    Limiter
}

// Router turns Telegram updates into work for the conversation they belong
// to. It is safe for concurrent use by the webhook handler.
type Router struct {
	dialogue   DialogueHandler
	moderation *ModerationHandler
	users      repository.UserRepository
	messenger  Messenger
	dispatcher Dispatcher
	limiter    Limiter

	// users already told to slow down, until their next accepted update
	throttled map[int64]bool
	mutex     sync.Mutex
	now       func() time.Time
}

func NewRouter(deps Deps) *Router {
	return &Router{
		dialogue:   deps.Dialogue,
		moderation: deps.Moderation,
		users:      deps.Users,
		messenger:  deps.Messenger,
		dispatcher: deps.Dispatcher,
		limiter:    deps.Limiter,
		throttled:  make(map[int64]bool),
		now:        time.Now,
	}
}

func (r *Router) HandleUpdate(update tgbotapi.Update) {
	msg, edited := update.Message, false
	if msg == nil && update.EditedMessage != nil {
		msg, edited = update.EditedMessage, true
	}

	route, ev := Classify(msg, edited)
	if route == RouteIgnore {
		return
	}

	if !r.admit(ev) {
		return
	}

	r.dispatcher.Dispatch(ev.ConversationID, func(ctx context.Context) {
		if err := r.route(ctx, route, msg, ev); err != nil {
			log := logger.With("conversation_id", ev.ConversationID, "user_id", ev.UserID, "event", describe(route, ev))
			log.Error().Err(err).Msg("update handling failed")
		}
	})
}

// admit applies the per-user rate limit. The first rejected update of a
// burst gets a notice, the rest are dropped silently.
func (r *Router) admit(ev usecase.DialogueEvent) bool {
	if r.limiter == nil || ev.UserID == 0 {
		return true
	}

	allowed, wait := r.limiter.Allow(ev.UserID, ratelimit.ActionMessage)

	r.mutex.Lock()
	notified := r.throttled[ev.UserID]
	if allowed {
		delete(r.throttled, ev.UserID)
	} else {
		r.throttled[ev.UserID] = true
	}
	r.mutex.Unlock()

	if allowed {
		return true
	}

	logger.Debug("User %d throttled, retry in %s", ev.UserID, wait)
	if !notified {
		r.dispatcher.Dispatch(ev.ConversationID, func(ctx context.Context) {
			if err := r.messenger.Reply(ctx, usecase.Reply{ChatID: ev.ConversationID, Text: usecase.MsgTooManyRequests}); err != nil {
				logger.Error("Conversation %d: throttle notice: %v", ev.ConversationID, err)
			}
		})
	}
	return false
}

func (r *Router) route(ctx context.Context, route Route, msg *tgbotapi.Message, ev usecase.DialogueEvent) error {
	switch route {
	case RouteStart:
		return r.start(ctx, msg)
	case RouteModerate:
		return r.moderate(ctx, ev)
	case RouteDialogue:
		return r.dialogue.Handle(ctx, ev)
	}
	return nil
}

// start records the sender's profile and greets them.
func (r *Router) start(ctx context.Context, msg *tgbotapi.Message) error {
	name := "there"
	if from := msg.From; from != nil {
		user := &entity.User{
			ID:           from.ID,
			FirstName:    from.FirstName,
			LastName:     from.LastName,
			Username:     from.UserName,
			LanguageCode: from.LanguageCode,
			IsBot:        from.IsBot,
			UpdatedAt:    r.now(),
		}
		if err := r.users.Save(ctx, user); err != nil {
			logger.Error("Failed to save user %d: %v", from.ID, err)
		}
		if from.FirstName != "" {
			name = from.FirstName
		}
	}

	return r.messenger.Reply(ctx, usecase.Reply{
		ChatID: msg.Chat.ID,
		Text:   fmt.Sprintf(usecase.MsgGreeting, name),
	})
}

// moderate lists the oldest tickets to admins and moderators. Everybody
// else gets a refusal.
func (r *Router) moderate(ctx context.Context, ev usecase.DialogueEvent) error {
	user, err := r.users.GetByID(ctx, ev.UserID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return err
	}

	if !user.CanModerate() {
		logger.Warn("User %d tried to moderate without a role", ev.UserID)
		return r.messenger.Reply(ctx, usecase.Reply{ChatID: ev.ConversationID, Text: usecase.MsgNotAllowed})
	}

	if r.limiter != nil {
		if allowed, _ := r.limiter.Allow(ev.UserID, ratelimit.ActionModerate); !allowed {
			return r.messenger.Reply(ctx, usecase.Reply{ChatID: ev.ConversationID, Text: usecase.MsgTooManyRequests})
		}
	}

	return r.moderation.Present(ctx, ev.ConversationID)
}

func describe(route Route, ev usecase.DialogueEvent) string {
	switch route {
	case RouteStart:
		return "start"
	case RouteModerate:
		return "moderation"
	default:
		return ev.Kind.String()
	}
}
