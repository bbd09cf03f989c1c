package proto

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

func (s Sender) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *Sender) UnmarshalText(data []byte) error {
	*s = Sender(data)
	return nil
}

// MessageRecord is one message as the remote store serves it. Payload, when
// present, is a separately JSON-encoded string; see UnmarshalPayload.
type MessageRecord struct {
	ID        string `json:"id"`
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	Payload   string `json:"payload,omitempty"`
}

// ChatRequest is the body of POST /message.
type ChatRequest struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the reply to POST /message. SessionID echoes the id the
// store filed the exchange under, which may differ from the one the client
// sent when the session was still provisional.
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"`
	Payload   string `json:"payload,omitempty"`
	SessionID string `json:"session_id"`
}

// RenameRequest is the body of PUT /session/{id}/title.
type RenameRequest struct {
	Title  string `json:"title"`
	UserID string `json:"user_id"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	CustomerNo string `json:"customer_no"`
	Password   string `json:"password"`
}

// LoginResponse is the reply to POST /auth/login.
type LoginResponse struct {
	Success    bool   `json:"success"`
	CustomerNo string `json:"customer_no,omitempty"`
	Token      string `json:"token,omitempty"`
	Message    string `json:"message,omitempty"`
}
