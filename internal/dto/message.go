package dto

import "github.com/SscSPs/tax_filing_app/internal/core/domain"

// SendMessageRequest posts a message to a client thread. Sender fields come from the token.
type SendMessageRequest struct {
	ClientID    string              `json:"clientId" validate:"required" binding:"required"`
	Subject     string              `json:"subject" validate:"required,max=200" binding:"required,max=200"`
	Content     string              `json:"content" validate:"required,max=10000" binding:"required,max=10000"`
	Attachments []domain.Attachment `json:"attachments" validate:"max=10,dive"`
}

// MarkReadRequest names the thread a message belongs to.
type MarkReadRequest struct {
	ClientID string `json:"clientId" binding:"required"`
}

// ListMessagesResponse wraps a thread, newest first.
type ListMessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

// UnreadCountResponse is the caller's unread counter for a thread.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
