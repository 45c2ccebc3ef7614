package messenger

// EventType discriminates the inbound event union.
type EventType string

const (
	// EventMessage is a text message posted into a thread.
	EventMessage EventType = "message"
	// EventParticipantChange reports accounts added to a thread.
	EventParticipantChange EventType = "participant_change"
	// EventOther covers everything else on the stream.
	EventOther EventType = "other"
)

// Participant identifies one account involved in a participant change.
type Participant struct {
	ID   string
	Name string
}

// Event is one item delivered on an account's stream.
type Event struct {
	Type EventType

	// Message fields.
	SenderID  string
	ThreadID  string
	Body      string
	MessageID string

	// Participant-change fields. ActorID is the account that performed
	// the change; Added lists the accounts brought into ThreadID.
	ActorID string
	Added   []Participant
}

// Delivery carries either an event or a stream error, never both.
type Delivery struct {
	Event Event
	Err   error
}
