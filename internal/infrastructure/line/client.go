package line

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"medreminder/internal/domain/constant"
	"medreminder/internal/domain/repository"
	"medreminder/internal/infrastructure/notifier"
	"medreminder/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// ErrNoRecipient is returned when no LINE user is known to push to.
var ErrNoRecipient = errors.New("no LINE recipient registered")

// Client wraps the linebot.Client. It presents delivered reminders as push
// messages with postback buttons and pushes alerts to the same recipient.
type Client struct {
	*linebot.Client
	log              logger.Logger
	store            repository.KeyValueStore
	defaultRecipient string
	snoozeEnabled    bool
}

// NewClient creates the LINE Bot client. The recipient is read from store
// under the line_recipient key and falls back to defaultRecipient.
func NewClient(channelSecret, channelToken string, store repository.KeyValueStore, defaultRecipient string, snoozeEnabled bool, log logger.Logger) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, errors.New("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set")
	}

	bot, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE Bot client: %w", err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client:           bot,
		log:              log,
		store:            store,
		defaultRecipient: defaultRecipient,
		snoozeEnabled:    snoozeEnabled,
	}, nil
}

// SendMessages sends one or more messages using the ReplyMessage API.
func (c *Client) SendMessages(replyToken string, messages ...linebot.SendingMessage) error {
	_, err := c.ReplyMessage(replyToken, messages...).Do()
	if err != nil {
		return err // Return the error for the caller to handle
	}
	c.log.Debug("Successfully sent reply message.")
	return nil
}

// PushMessages sends one or more messages using the PushMessage API.
func (c *Client) PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error {
	_, err := c.PushMessage(to, messages...).WithContext(ctx).Do()
	if err != nil {
		return err
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// ParseRequest parses incoming webhook requests.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.Client.ParseRequest(r)
}

// Recipient returns the LINE user that receives reminders.
func (c *Client) Recipient(ctx context.Context) (string, error) {
	if c.store != nil {
		to, found, err := c.store.Get(ctx, constant.LineRecipientKey)
		if err != nil {
			c.log.Error("Failed to read LINE recipient", err)
		} else if found && to != "" {
			return to, nil
		}
	}
	if c.defaultRecipient != "" {
		return c.defaultRecipient, nil
	}
	return "", ErrNoRecipient
}

// Present pushes a delivered reminder with one button per category action.
func (c *Client) Present(ctx context.Context, n notifier.Notification) error {
	to, err := c.Recipient(ctx)
	if err != nil {
		return err
	}
	text := n.Request.Content.Title
	if n.Request.Content.Body != "" {
		text += "\n" + n.Request.Content.Body
	}
	msg := linebot.NewTextMessage(text).WithQuickReplies(reminderQuickReplies(n.Request.Identifier, c.snoozeEnabled))
	return c.PushMessages(ctx, to, msg)
}

// Alert pushes a plain text alert.
func (c *Client) Alert(ctx context.Context, title, message string) {
	to, err := c.Recipient(ctx)
	if err != nil {
		c.log.Warn(fmt.Sprintf("Dropping alert %q: %v", title, err))
		return
	}
	if err := c.PushMessages(ctx, to, linebot.NewTextMessage(title+"\n"+message)); err != nil {
		c.log.Error(fmt.Sprintf("Failed to push alert %q", title), err)
	}
}

func reminderQuickReplies(notificationID string, snooze bool) *linebot.QuickReplyItems {
	buttons := []*linebot.QuickReplyButton{
		postbackButton("✅ Taken", constant.ActionTaken, notificationID),
		postbackButton("❌ Missed", constant.ActionMissed, notificationID),
	}
	if snooze {
		buttons = append(buttons, postbackButton("⏰ Snooze 5 min", constant.ActionSnooze, notificationID))
	}
	return linebot.NewQuickReplyItems(buttons...)
}

func postbackButton(label string, action constant.ActionIdentifier, notificationID string) *linebot.QuickReplyButton {
	return linebot.NewQuickReplyButton("", linebot.NewPostbackAction(label, PostbackData(action, notificationID), "", label, "", ""))
}

// PostbackData encodes a reminder action for a postback button.
func PostbackData(action constant.ActionIdentifier, notificationID string) string {
	v := url.Values{}
	v.Set("action", string(action))
	v.Set("id", notificationID)
	return v.Encode()
}

// ParsePostbackData decodes data produced by PostbackData.
func ParsePostbackData(data string) (constant.ActionIdentifier, string, bool) {
	v, err := url.ParseQuery(data)
	if err != nil {
		return "", "", false
	}
	action, id := v.Get("action"), v.Get("id")
	if action == "" || id == "" {
		return "", "", false
	}
	return constant.ActionIdentifier(action), id, true
}
