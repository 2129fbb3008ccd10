package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketbot/internal/domain/entity"
	"ticketbot/internal/domain/repository"
	"ticketbot/pkg/errors"
	"ticketbot/pkg/logger"
)

// TicketCreationUseCase drives the ticket dialogue of every conversation.
// Callers must not run two events of the same conversation concurrently.
type TicketCreationUseCase struct {
	dialogues repository.DialogueRepository
	submitter TicketSubmitter
	replier   Replier
	files     FileResolver
	columns   int
	now       func() time.Time
}

func NewTicketCreationUseCase(
	dialogues repository.DialogueRepository,
	submitter TicketSubmitter,
	replier Replier,
	files FileResolver,
	keyboardColumns int,
) *TicketCreationUseCase {
	if keyboardColumns <= 0 {
		keyboardColumns = 3
	}
	return &TicketCreationUseCase{
		dialogues: dialogues,
		submitter: submitter,
		replier:   replier,
		files:     files,
		columns:   keyboardColumns,
		now:       time.Now,
	}
}

// AffordanceFor decides the keyboard from the ticket alone. The previously
// shown affordance only tells whether an explicit removal is needed.
func AffordanceFor(ticket entity.Ticket, shown entity.Affordance) entity.Affordance {
	if ticket.Submittable() {
		return entity.AffordanceCategoryKeyboard
	}
	if shown == entity.AffordanceCategoryKeyboard {
		return entity.AffordanceRemove
	}
	return entity.AffordanceNone
}

func (uc *TicketCreationUseCase) Handle(ctx context.Context, ev DialogueEvent) error {
	switch ev.Kind {
	case EventEnter:
		return uc.enter(ctx, ev)
	case EventCancel:
		return uc.cancel(ctx, ev)
	case EventHelp:
		return uc.help(ctx, ev)
	}

	state, ok, err := uc.dialogues.Get(ctx, ev.ConversationID)
	if err != nil {
		return errors.Internal("Failed to load dialogue", err)
	}
	if !ok {
		logger.Debug("Conversation %d: %s event outside of a dialogue", ev.ConversationID, ev.Kind)
		return uc.send(ctx, Reply{ChatID: ev.ConversationID, Text: MsgUseAdd})
	}

	state.LastInboundRef = ev.MessageID

	switch ev.Kind {
	case EventText:
		state.Ticket.Description = ev.Text

	case EventPhoto:
		if len(ev.PhotoFileIDs) == 0 {
			return nil
		}
		// Variants are ordered by size, the last one is the full picture.
		url, err := uc.files.FileURL(ctx, ev.PhotoFileIDs[len(ev.PhotoFileIDs)-1])
		if err != nil {
			logger.Warn("Conversation %d: resolve photo: %v", ev.ConversationID, err)
			return uc.send(ctx, Reply{ChatID: ev.ConversationID, Text: MsgPhotoFailed, ReplyTo: ev.MessageID})
		}
		state.MediaReferences = append(state.MediaReferences, url)

	case EventLocation:
		if ev.Location == nil {
			return nil
		}
		loc := *ev.Location
		state.Ticket.Location = &loc

	case EventCategory:
		return uc.submit(ctx, state, ev.Category)

	default:
		return nil
	}

	return uc.acknowledge(ctx, state)
}

func (uc *TicketCreationUseCase) enter(ctx context.Context, ev DialogueEvent) error {
	affordance := entity.AffordanceNone
	if prev, ok, _ := uc.dialogues.Get(ctx, ev.ConversationID); ok && prev.AffordanceShown == entity.AffordanceCategoryKeyboard {
		affordance = entity.AffordanceRemove
	}

	state := entity.NewDialogueState(ev.ConversationID, ev.UserID, uc.now())
	if err := uc.dialogues.Save(ctx, state); err != nil {
		return errors.Internal("Failed to start dialogue", err)
	}
	logger.Debug("Conversation %d: dialogue started by user %d", ev.ConversationID, ev.UserID)

	return uc.send(ctx, Reply{ChatID: ev.ConversationID, Text: MsgCreationEnter, Affordance: affordance})
}

func (uc *TicketCreationUseCase) cancel(ctx context.Context, ev DialogueEvent) error {
	_, ok, err := uc.dialogues.Get(ctx, ev.ConversationID)
	if err != nil {
		return errors.Internal("Failed to load dialogue", err)
	}
	if !ok {
		return uc.send(ctx, Reply{ChatID: ev.ConversationID, Text: MsgNothingToCancel})
	}

	if err := uc.dialogues.Delete(ctx, ev.ConversationID); err != nil {
		return errors.Internal("Failed to drop dialogue", err)
	}
	logger.Debug("Conversation %d: dialogue cancelled", ev.ConversationID)

	return uc.send(ctx, Reply{
		ChatID:     ev.ConversationID,
		Text:       MsgCreationCanceled,
		Affordance: entity.AffordanceRemove,
	})
}

func (uc *TicketCreationUseCase) help(ctx context.Context, ev DialogueEvent) error {
	text := MsgHelp
	if _, ok, _ := uc.dialogues.Get(ctx, ev.ConversationID); ok {
		text = MsgCreationHelp
	}
	return uc.send(ctx, Reply{ChatID: ev.ConversationID, Text: text})
}

// acknowledge stores the mutated draft and answers with the recomputed
// affordance.
func (uc *TicketCreationUseCase) acknowledge(ctx context.Context, state *entity.DialogueState) error {
	affordance := AffordanceFor(state.Ticket, state.AffordanceShown)

	text := MsgRequestCategory
	if !state.Ticket.Submittable() {
		text = fmt.Sprintf(MsgCreationAdded, strings.Join(state.Ticket.MissingFields(), ", "))
	}

	if affordance == entity.AffordanceCategoryKeyboard {
		state.AffordanceShown = entity.AffordanceCategoryKeyboard
	} else {
		state.AffordanceShown = entity.AffordanceNone
	}
	if err := uc.dialogues.Save(ctx, state); err != nil {
		return errors.Internal("Failed to save dialogue", err)
	}

	return uc.send(ctx, uc.withAffordance(Reply{
		ChatID:  state.ConversationID,
		Text:    text,
		ReplyTo: state.LastInboundRef,
	}, affordance))
}

func (uc *TicketCreationUseCase) submit(ctx context.Context, state *entity.DialogueState, category entity.Category) error {
	if !state.Ticket.Submittable() || !category.Valid() {
		logger.Debug("Conversation %d: category %q ignored, ticket not submittable", state.ConversationID, category)
		if err := uc.dialogues.Save(ctx, state); err != nil {
			return errors.Internal("Failed to save dialogue", err)
		}
		missing := strings.Join(state.Ticket.MissingFields(), ", ")
		if missing == "" {
			missing = "category"
		}
		return uc.send(ctx, uc.withAffordance(Reply{
			ChatID:  state.ConversationID,
			Text:    fmt.Sprintf(MsgNotReady, missing),
			ReplyTo: state.LastInboundRef,
		}, AffordanceFor(state.Ticket, state.AffordanceShown)))
	}

	ticket := state.Ticket
	ticket.Category = category
	refs := append([]string(nil), state.MediaReferences...)

	id, err := uc.submitter.Submit(ctx, ticket, refs)
	if err != nil {
		// The draft stays so the user can pick the category again.
		logger.Error("Conversation %d: submit failed: %v", state.ConversationID, err)
		if replyErr := uc.send(ctx, uc.withAffordance(Reply{
			ChatID:  state.ConversationID,
			Text:    MsgSubmitFailed,
			ReplyTo: state.LastInboundRef,
		}, entity.AffordanceCategoryKeyboard)); replyErr != nil {
			logger.Warn("Conversation %d: %v", state.ConversationID, replyErr)
		}
		return err
	}

	if err := uc.dialogues.Delete(ctx, state.ConversationID); err != nil {
		logger.Warn("Conversation %d: drop submitted dialogue: %v", state.ConversationID, err)
	}
	logger.Info("Ticket %s submitted by user %d with %d media", id, ticket.UserID, len(refs))

	return uc.send(ctx, Reply{
		ChatID:     state.ConversationID,
		Text:       fmt.Sprintf(MsgSubmitted, id),
		ReplyTo:    state.LastInboundRef,
		Affordance: entity.AffordanceRemove,
	})
}

func (uc *TicketCreationUseCase) withAffordance(r Reply, a entity.Affordance) Reply {
	r.Affordance = a
	if a == entity.AffordanceCategoryKeyboard {
		r.Choices = entity.CategoryLabels()
		r.Columns = uc.columns
	}
	return r
}

func (uc *TicketCreationUseCase) send(ctx context.Context, r Reply) error {
	if err := uc.replier.Reply(ctx, r); err != nil {
		return fmt.Errorf("send reply to %d: %w", r.ChatID, err)
	}
	return nil
}
