package infrastructure

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// membershipStatuses that count as "joined" when gating on mandatory
// channels. Anything else (left, kicked, restricted) means not joined.
var membershipStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// TelegramClient wraps a single bot token. The interfaces.Messenger side is
// what the broadcast pipeline uses; the extra methods serve the interactive
// handlers.
type TelegramClient struct {
	Bot *tgbotapi.BotAPI
}

func NewTelegramClient(token string) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramClient{Bot: bot}, nil
}

func (t *TelegramClient) Username() string { return t.Bot.Self.UserName }

func (t *TelegramClient) SendText(to, text, buttonText, buttonURL string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", to, err)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	if kb := urlKeyboard(buttonText, buttonURL); kb != nil {
		msg.ReplyMarkup = kb
	}
	_, err = t.Bot.Send(msg)
	return err
}

func (t *TelegramClient) SendPhoto(to, media, caption, buttonText, buttonURL string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", to, err)
	}
	msg := tgbotapi.NewPhoto(chatID, mediaFile(media))
	msg.Caption = caption
	msg.ParseMode = "HTML"
	if kb := urlKeyboard(buttonText, buttonURL); kb != nil {
		msg.ReplyMarkup = kb
	}
	_, err = t.Bot.Send(msg)
	return err
}

func (t *TelegramClient) SendVideo(to, media, caption, buttonText, buttonURL string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", to, err)
	}
	msg := tgbotapi.NewVideo(chatID, mediaFile(media))
	msg.Caption = caption
	msg.ParseMode = "HTML"
	if kb := urlKeyboard(buttonText, buttonURL); kb != nil {
		msg.ReplyMarkup = kb
	}
	_, err = t.Bot.Send(msg)
	return err
}

// SendPhotoBytes sends raw image data, used for the admin login QR code.
func (t *TelegramClient) SendPhotoBytes(chatID int64, name string, data []byte, caption string, markup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	msg.Caption = caption
	msg.ParseMode = "HTML"
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := t.Bot.Send(msg)
	return err
}

// IsChatMember reports whether the user has joined the channel. Any API
// error counts as not joined so gating fails closed.
func (t *TelegramClient) IsChatMember(channelID string, userID int64) bool {
	chatID, err := strconv.ParseInt(channelID, 10, 64)
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if err == nil {
		cfg.ChatID = chatID
	} else {
		cfg.SuperGroupUsername = channelID
	}

	member, err := t.Bot.GetChatMember(cfg)
	if err != nil {
		Log.Warnf("[Telegram] membership check for %s failed: %v", channelID, err)
		return false
	}
	return membershipStatuses[member.Status]
}

// FileURL resolves a Telegram file id to a temporary download link.
func (t *TelegramClient) FileURL(fileID string) (string, error) {
	file, err := t.Bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", fileID, err)
	}
	return file.Link(t.Bot.Token), nil
}

func (t *TelegramClient) DeleteMessage(chatID int64, messageID int) {
	t.Bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
}

// IsBlockedError reports whether the send failure means the user blocked
// the bot or deactivated their account.
func IsBlockedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "forbidden") ||
		strings.Contains(msg, "blocked") ||
		strings.Contains(msg, "deactivated") ||
		strings.Contains(msg, "chat not found")
}

func urlKeyboard(text, url string) *tgbotapi.InlineKeyboardMarkup {
	if text == "" || url == "" {
		return nil
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, url)),
	)
	return &kb
}

// mediaFile treats an existing local path as a file upload and anything
// else as a URL or file id.
func mediaFile(media string) tgbotapi.RequestFileData {
	if _, err := os.Stat(media); err == nil {
		return tgbotapi.FilePath(media)
	}
	if strings.HasPrefix(media, "http://") || strings.HasPrefix(media, "https://") {
		return tgbotapi.FileURL(media)
	}
	return tgbotapi.FileID(media)
}
