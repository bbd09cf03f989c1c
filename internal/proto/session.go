package proto

// Session is the summary shape the remote store reports for a durable
// conversation. Provisional sessions never appear here; they exist only on the
// client until their first accepted message.
type Session struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
