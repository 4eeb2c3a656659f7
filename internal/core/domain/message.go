package domain

// SenderRole is the side of a client thread a message comes from.
type SenderRole string

const (
	SenderAdmin  SenderRole = "admin"
	SenderClient SenderRole = "client"
)

// Valid reports whether r is admin or client.
func (r SenderRole) Valid() bool {
	return r == SenderAdmin || r == SenderClient
}

// Counterpart returns the role on the other side of the thread.
func (r SenderRole) Counterpart() SenderRole {
	if r == SenderAdmin {
		return SenderClient
	}
	return SenderAdmin
}

// Attachment is a file reference carried by a message.
type Attachment struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Message belongs to a client's thread. IsRead only ever flips from false to true.
type Message struct {
	ID          string       `json:"id"`
	ClientID    string       `json:"clientId"`
	SenderID    string       `json:"senderId"`
	SenderRole  SenderRole   `json:"senderRole"`
	SenderName  string       `json:"senderName"`
	Subject     string       `json:"subject"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	IsRead      bool         `json:"isRead"`
	Timestamps
}
