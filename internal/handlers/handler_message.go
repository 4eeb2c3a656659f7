package handlers

import (
	"net/http"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	portssvc "github.com/SscSPs/tax_filing_app/internal/core/ports/services"
	"github.com/SscSPs/tax_filing_app/internal/dto"
	"github.com/SscSPs/tax_filing_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// messageHandler handles HTTP requests on client message threads.
type messageHandler struct {
	messageService portssvc.MessageSvcFacade
}

func newMessageHandler(ms portssvc.MessageSvcFacade) *messageHandler {
	return &messageHandler{messageService: ms}
}

func registerMessageRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newMessageHandler(services.Message)

	messages := rg.Group("/messages", middleware.RequireModuleForStaff(services.User, domain.ModuleMessages))
	{
		messages.POST("/send", h.sendMessage)
		messages.GET("/:clientId", h.listMessages)
		messages.GET("/:clientId/unread-count", h.unreadCount)
		messages.POST("/:id/mark-read", h.markRead)
		messages.DELETE("/:clientId/:id", h.deleteMessage)
	}
}

// sendMessage godoc
// @Summary Send a message
// @Description Posts a message to a client thread. The sender is taken from the token.
// @Tags messages
// @Accept json
// @Produce json
// @Param message body dto.SendMessageRequest true "Message"
// @Success 201 {object} domain.Message
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /messages/send [post]
func (h *messageHandler) sendMessage(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// listMessages godoc
// @Summary List a client thread
// @Description Returns the thread newest first.
// @Tags messages
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} dto.ListMessagesResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /messages/{clientId} [get]
func (h *messageHandler) listMessages(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}

	msgs, err := h.messageService.ListForClient(c.Request.Context(), caller, c.Param("clientId"))
	if err != nil {
		respondError(c, err, "Failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	c.JSON(http.StatusOK, dto.ListMessagesResponse{Messages: msgs})
}

// unreadCount godoc
// @Summary Unread messages for the caller's side
// @Tags messages
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} dto.UnreadCountResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /messages/{clientId}/unread-count [get]
func (h *messageHandler) unreadCount(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}

	count, err := h.messageService.UnreadCount(c.Request.Context(), caller, c.Param("clientId"))
	if err != nil {
		respondError(c, err, "Failed to read unread count")
		return
	}
	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// markRead godoc
// @Summary Mark a message read
// @Description No-op when the message is absent or already read.
// @Tags messages
// @Accept json
// @Param id path string true "Message ID"
// @Param body body dto.MarkReadRequest true "Thread the message belongs to"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /messages/{id}/mark-read [post]
func (h *messageHandler) markRead(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.messageService.MarkRead(c.Request.Context(), caller, c.Param("id"), req.ClientID); err != nil {
		respondError(c, err, "Failed to mark message read")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteMessage godoc
// @Summary Delete a message
// @Description Staff may delete any message of a thread, clients only their own.
// @Tags messages
// @Param clientId path string true "Client ID"
// @Param id path string true "Message ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /messages/{clientId}/{id} [delete]
func (h *messageHandler) deleteMessage(c *gin.Context) {
	caller, ok := requirePrincipal(c)
	if !ok {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), caller, c.Param("id"), c.Param("clientId")); err != nil {
		respondError(c, err, "Failed to delete message")
		return
	}
	c.Status(http.StatusNoContent)
}
