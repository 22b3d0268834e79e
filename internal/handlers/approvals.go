package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cupidworks/valentine-backend/internal/notify"
	"github.com/cupidworks/valentine-backend/internal/services"
	appErrors "github.com/cupidworks/valentine-backend/pkg/errors"
	"github.com/cupidworks/valentine-backend/pkg/logger"
	"github.com/cupidworks/valentine-backend/pkg/response"
)

// ApprovalHandler resolves pending registrations, either through the Telegram
// webhook or the direct approval endpoint.
type ApprovalHandler struct {
	approvals  *services.ApprovalService
	telegram   *notify.TelegramClient
	dispatcher *notify.Dispatcher
	log        *zap.Logger
}

// NewApprovalHandler constructs an ApprovalHandler.
func NewApprovalHandler(approvals *services.ApprovalService, telegram *notify.TelegramClient, dispatcher *notify.Dispatcher) *ApprovalHandler {
	return &ApprovalHandler{
		approvals:  approvals,
		telegram:   telegram,
		dispatcher: dispatcher,
		log:        logger.WithModule("approvals"),
	}
}

type telegramUpdate struct {
	CallbackQuery *struct {
		ID      string `json:"id"`
		Data    string `json:"data"`
		Message *struct {
			MessageID int64 `json:"message_id"`
			Chat      struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message"`
	} `json:"callback_query"`
}

// Webhook handles POST /telegram-webhook. It ALWAYS answers 200 {ok:true}:
// a non-200 makes the channel retry the same callback indefinitely, and the
// resolution itself is idempotent anyway.
func (h *ApprovalHandler) Webhook(c *gin.Context) {
	defer c.JSON(http.StatusOK, gin.H{"ok": true})

	var update telegramUpdate
	if err := c.ShouldBindJSON(&update); err != nil || update.CallbackQuery == nil {
		return
	}

	data := update.CallbackQuery.Data
	var (
		res *services.Resolution
		err error
	)
	switch {
	case strings.HasPrefix(data, notify.CallbackApprovePrefix):
		res, err = h.approvals.Approve(requestContext(c), strings.TrimPrefix(data, notify.CallbackApprovePrefix))
	case strings.HasPrefix(data, notify.CallbackRejectPrefix):
		res, err = h.approvals.Reject(requestContext(c), strings.TrimPrefix(data, notify.CallbackRejectPrefix))
	default:
		return
	}
	if err != nil {
		h.log.Error("webhook resolution failed", zap.String("data", data), zap.Error(err))
		return
	}

	h.editPrompt(update, res)
}

// editPrompt rewrites the approval message so the chat shows the outcome.
func (h *ApprovalHandler) editPrompt(update telegramUpdate, res *services.Resolution) {
	if !h.telegram.Enabled() || h.dispatcher == nil {
		return
	}
	cq := update.CallbackQuery
	if cq == nil || cq.Message == nil {
		return
	}

	var text string
	switch res.Result {
	case "approved":
		text = fmt.Sprintf("Approved: %s (%s)", res.Name, res.Email)
		if res.ReferralCode != nil {
			text += " · code " + *res.ReferralCode
		}
	case "rejected":
		text = fmt.Sprintf("Rejected: %s (%s)", res.Name, res.Email)
	default:
		text = "Already resolved"
	}

	chatID := strconv.FormatInt(cq.Message.Chat.ID, 10)
	messageID := cq.Message.MessageID
	h.dispatcher.Go("telegram", func(ctx context.Context) error {
		return h.telegram.SendDecisionEdit(ctx, chatID, messageID, text)
	})
}

type approveRequest struct {
	PendingUserID string `json:"pendingUserId" validate:"required"`
	Decision      string `json:"decision" validate:"omitempty,oneof=approve reject"`
}

// Approve handles POST /approve-telegram: the direct resolution path used
// when the inline buttons are unavailable.
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var req approveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var (
		res *services.Resolution
		err error
	)
	if req.Decision == "reject" {
		res, err = h.approvals.Reject(requestContext(c), req.PendingUserID)
	} else {
		res, err = h.approvals.Approve(requestContext(c), req.PendingUserID)
	}
	if err != nil {
		response.Error(c, appErrors.FromError(err))
		return
	}

	payload := gin.H{"result": res.Result}
	if res.ReferralCode != nil {
		payload["referral_code"] = *res.ReferralCode
	}
	response.Success(c, http.StatusOK, payload)
}
