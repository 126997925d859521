package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"medreminder/internal/application/service"
	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/repository"
	"medreminder/internal/infrastructure/line"
	"medreminder/internal/infrastructure/notifier"
	"medreminder/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

var errReminderGone = errors.New("reminder is no longer active")

// LineHandler handles incoming LINE webhook events. Followers become the
// recipient of reminders, and postbacks from reminder buttons become
// notification responses.
type LineHandler struct {
	lineClient    *line.Client
	store         repository.KeyValueStore
	center        *notifier.Center
	notifications service.NotificationService
	scheduler     service.SchedulerService
	log           logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(
	lineClient *line.Client,
	store repository.KeyValueStore,
	center *notifier.Center,
	notifications service.NotificationService,
	scheduler service.SchedulerService,
	log logger.Logger,
) *LineHandler {
	return &LineHandler{
		lineClient:    lineClient,
		store:         store,
		center:        center,
		notifications: notifications,
		scheduler:     scheduler,
		log:           log,
	}
}

// HandleWebhook is the main entry point for webhook requests.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.lineClient.ParseRequest(c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		h.log.Info(fmt.Sprintf("Processing event type: %s", event.Type))
		switch event.Type {
		case linebot.EventTypeMessage:
			h.handleMessageEvent(ctx, event)
		case linebot.EventTypeFollow:
			h.handleFollowEvent(ctx, event)
		case linebot.EventTypeUnfollow:
			h.handleUnfollowEvent(ctx, event)
		case linebot.EventTypePostback:
			h.handlePostbackEvent(ctx, event)
		default:
			h.log.Info(fmt.Sprintf("Unhandled event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

// handleFollowEvent registers the follower as the reminder recipient.
func (h *LineHandler) handleFollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s followed the bot.", userID))

	if err := h.store.Set(ctx, constant.LineRecipientKey, userID); err != nil {
		h.log.Error(fmt.Sprintf("Failed to store LINE recipient %s", userID), err)
		h.replyWithError(event.ReplyToken, "Failed to register for reminders. Please try again later.")
		return
	}

	welcome := linebot.NewTextMessage("Medicine reminders will be sent here. Tap ✅ Taken or ❌ Missed on each reminder to record your dose.")
	howTo := linebot.NewTextMessage("Send \"help\" to see what I can do.")
	if err := h.lineClient.SendMessages(event.ReplyToken, welcome, howTo); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send follow reply to user %s", userID), err)
	}
}

// handleUnfollowEvent stops pushing reminders to the user.
func (h *LineHandler) handleUnfollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s unfollowed or blocked the bot.", userID))

	current, found, err := h.store.Get(ctx, constant.LineRecipientKey)
	if err != nil {
		h.log.Error("Failed to read LINE recipient", err)
		return
	}
	if !found || current != userID {
		return
	}
	if err := h.store.Remove(ctx, constant.LineRecipientKey); err != nil {
		h.log.Error(fmt.Sprintf("Failed to remove LINE recipient %s", userID), err)
	}
	// No reply possible for unfollow events
}

// handleMessageEvent processes text commands.
func (h *LineHandler) handleMessageEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	replyToken := event.ReplyToken

	message, ok := event.Message.(*linebot.TextMessage)
	if !ok {
		h.log.Info(fmt.Sprintf("Received non-text message type from %s", userID))
		return
	}
	text := strings.ToLower(strings.TrimSpace(message.Text))
	h.log.Info(fmt.Sprintf("Received text message from %s: %s", userID, text))

	switch text {
	case "list":
		h.sendReminderList(ctx, replyToken)
	default:
		h.sendHowToUse(replyToken)
	}
}

// handlePostbackEvent turns a reminder button press into a notification response.
func (h *LineHandler) handlePostbackEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	data := event.Postback.Data
	h.log.Info(fmt.Sprintf("Received postback from %s: data=%s", userID, data))

	if err := h.respondToPostback(ctx, data); err != nil {
		h.log.Warn(fmt.Sprintf("Postback from %s not handled: %v", userID, err))
		if errors.Is(err, errReminderGone) {
			h.replyWithError(event.ReplyToken, "This reminder is no longer active.")
			return
		}
		h.replyWithError(event.ReplyToken, "Failed to process the reminder. Please try again.")
	}
}

// respondToPostback resolves the notification named in data and emits the
// response event. The dispatcher reports the outcome through alerts.
func (h *LineHandler) respondToPostback(ctx context.Context, data string) error {
	action, id, ok := line.ParsePostbackData(data)
	if !ok {
		return fmt.Errorf("unrecognized postback data %q", data)
	}

	n, found := h.center.PresentedByID(id)
	if !found {
		req, live := h.center.ScheduledRequestByID(id)
		if !live {
			return fmt.Errorf("%w: %s", errReminderGone, id)
		}
		n = notifier.Notification{Request: req, Date: time.Now()}
	}

	if !h.notifications.IsInitialized() {
		if err := h.notifications.Initialize(ctx); err != nil {
			return err
		}
	}

	h.center.Respond(ctx, notifier.Response{ActionIdentifier: action.String(), Notification: n})
	return nil
}

// sendHowToUse sends the help message.
func (h *LineHandler) sendHowToUse(replyToken string) {
	howToUse := "Reminders arrive here at each dose time.\n" +
		"・✅ Taken records the dose and updates your stock\n" +
		"・❌ Missed records a missed dose\n" +
		"・⏰ Snooze reminds you again in 5 minutes\n" +
		"Send \"list\" to see your scheduled reminders."
	quickReply := linebot.NewQuickReplyItems(
		linebot.NewQuickReplyButton("", linebot.NewMessageAction("list", "list")),
	)
	message := linebot.NewTextMessage(howToUse).WithQuickReplies(quickReply)
	if err := h.lineClient.SendMessages(replyToken, message); err != nil {
		h.log.Error("Failed to send how-to-use message", err)
	}
}

// sendReminderList replies with the scheduled reminders.
func (h *LineHandler) sendReminderList(ctx context.Context, replyToken string) {
	list, err := h.scheduler.ListScheduled(ctx)
	if err != nil {
		h.log.Error("Failed to list scheduled reminders", err)
		h.replyWithError(replyToken, "Failed to load your reminders.")
		return
	}
	if len(list) == 0 {
		if err := h.lineClient.SendMessages(replyToken, linebot.NewTextMessage("No reminders are scheduled.")); err != nil {
			h.log.Error("Failed to send empty reminder list", err)
		}
		return
	}

	if err := h.lineClient.SendMessages(replyToken, linebot.NewTextMessage(formatReminderList(list))); err != nil {
		h.log.Error("Failed to send reminder list", err)
	}
}

func formatReminderList(list []notifier.ScheduledRequest) string {
	var b strings.Builder
	b.WriteString("Scheduled reminders:")
	for _, r := range list {
		if r.Trigger.Repeats {
			fmt.Fprintf(&b, "\n%02d:%02d %s (daily)", r.Trigger.Hour, r.Trigger.Minute, r.Content.Data.DisplayName())
		} else {
			fmt.Fprintf(&b, "\n%s %s (snoozed)", r.Trigger.Date.Format("15:04"), r.Content.Data.DisplayName())
		}
	}
	return b.String()
}

// replyWithError sends a simple error message reply.
func (h *LineHandler) replyWithError(replyToken, userMessage string) {
	if err := h.lineClient.SendMessages(replyToken, linebot.NewTextMessage(userMessage)); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send error reply message: %s", userMessage), err)
	}
}
