package entity

import "time"

// Affordance is the reply keyboard state attached to a bot reply.
type Affordance int

const (
	AffordanceNone Affordance = iota
	AffordanceCategoryKeyboard
	AffordanceRemove
)

func (a Affordance) String() string {
	switch a {
	case AffordanceCategoryKeyboard:
		return "category_keyboard"
	case AffordanceRemove:
		return "remove"
	default:
		return "none"
	}
}

// DialogueState is the in-progress ticket of one conversation. It is never
// persisted; losing it loses the draft.
type DialogueState struct {
	ConversationID  int64
	Ticket          Ticket
	MediaReferences []string
	LastInboundRef  int
	AffordanceShown Affordance
	UpdatedAt       time.Time
}

func NewDialogueState(conversationID, userID int64, now time.Time) *DialogueState {
	return &DialogueState{
		ConversationID:  conversationID,
		Ticket:          NewTicket(userID, now),
		MediaReferences: []string{},
		UpdatedAt:       now,
	}
}
