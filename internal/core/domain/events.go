package domain

// MessageEvent is an incoming plain-text message in a group chat.
type MessageEvent struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	UserID    int64  `json:"user_id"`
	Text      string `json:"text"`
}

// ActionEvent is a button press on a previously sent bot reply. RequesterID
// is the sender of the message the reply was attached to; zero when that
// message is no longer available.
type ActionEvent struct {
	ActionID    string `json:"action_id"`
	ChatID      int64  `json:"chat_id"`
	MessageID   int64  `json:"message_id"`
	InvokerID   int64  `json:"invoker_id"`
	RequesterID int64  `json:"requester_id"`
	Payload     string `json:"payload"`
}

// MessageRef locates one delivered message.
type MessageRef struct {
	ChatID    int64
	MessageID int64
}

// Action is a clickable button attached to an outgoing message. Payload is
// an opaque UTF-8 string echoed back on invocation.
type Action struct {
	Label   string
	Payload string
}
