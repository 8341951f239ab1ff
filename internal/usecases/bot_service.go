package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	qrcode "github.com/skip2/go-qrcode"

	"hilalbot/internal/entities"
	"hilalbot/internal/infrastructure"
	"hilalbot/internal/interfaces"
	"hilalbot/internal/repository"
)

// Broadcast pacing. Telegram tolerates ~30 messages/second to distinct
// chats; media gets extra headroom.
const (
	broadcastDelayText  = 50 * time.Millisecond
	broadcastDelayVideo = 100 * time.Millisecond
)

func variantLanguage(variant string) string {
	if variant == entities.BotKorean {
		return "ko"
	}
	return "tr"
}

// SubscriberStore is the slice of subscriber persistence the bot service
// needs. *repository.SubscriberRepository implements it.
type SubscriberStore interface {
	GetOrCreate(bot, telegramID, username, firstName, lastName, language string) (*entities.Subscriber, error)
	IncrementRequests(bot, telegramID, kind string) error
	ListActive(bot string) ([]entities.Subscriber, error)
	SetBlocked(bot, telegramID string, blocked bool) error
}

// BotService owns all Telegram-side behavior: commands, free messages,
// membership gating and broadcasts, for both bot variants.
type BotService struct {
	cfg         *infrastructure.Config
	manager     *infrastructure.BotManager
	correction  *CorrectionService
	auth        *AuthUsecase
	stats       *StatsUsecase
	subscribers SubscriberStore
	channels    *repository.ChannelRepository
	usage       *repository.UsageRepository
	limiter     *infrastructure.MessageRateLimiter
}

func NewBotService(
	cfg *infrastructure.Config,
	manager *infrastructure.BotManager,
	correction *CorrectionService,
	auth *AuthUsecase,
	stats *StatsUsecase,
	subscribers SubscriberStore,
	channels *repository.ChannelRepository,
	usage *repository.UsageRepository,
	limiter *infrastructure.MessageRateLimiter,
) *BotService {
	return &BotService{
		cfg:         cfg,
		manager:     manager,
		correction:  correction,
		auth:        auth,
		stats:       stats,
		subscribers: subscribers,
		channels:    channels,
		usage:       usage,
		limiter:     limiter,
	}
}

// HandleUpdate is the entry point wired into the bot manager's polling
// loops. Runs on its own goroutine per update.
func (s *BotService) HandleUpdate(client *infrastructure.TelegramClient, update tgbotapi.Update, variant string) {
	defer func() {
		if r := recover(); r != nil {
			infrastructure.Log.Errorf("[Bot/%s] handler panic: %v", variant, r)
		}
	}()

	if update.CallbackQuery != nil {
		s.handleCallback(client, update.CallbackQuery, variant)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	sub, err := s.subscribers.GetOrCreate(variant,
		strconv.FormatInt(msg.From.ID, 10),
		msg.From.UserName, msg.From.FirstName, msg.From.LastName,
		variantLanguage(variant))
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] subscriber upsert: %v", variant, err)
		return
	}

	if msg.IsCommand() {
		s.handleCommand(client, msg, variant, sub)
		return
	}

	// Commands stay reachable for everyone; content goes through the
	// mandatory-channel gate and the rate limiter.
	if !s.requireMembership(client, msg.Chat.ID, msg.From.ID, variant) {
		return
	}
	if !s.limiter.Allow(msg.Chat.ID) {
		s.reply(client, msg.Chat.ID, t(variant, "rate_limited"))
		return
	}

	switch {
	case msg.Voice != nil:
		s.handleAudio(client, msg, variant, sub, entities.RequestVoice, msg.Voice.FileID)
	case msg.VideoNote != nil:
		s.handleAudio(client, msg, variant, sub, entities.RequestVideoNote, msg.VideoNote.FileID)
	case msg.Audio != nil:
		s.handleAudio(client, msg, variant, sub, entities.RequestAudio, msg.Audio.FileID)
	case msg.Video != nil:
		s.handleAudio(client, msg, variant, sub, entities.RequestVideo, msg.Video.FileID)
	case len(msg.Photo) > 0:
		s.handlePhoto(client, msg, variant, sub)
	case msg.Text != "":
		s.handleText(client, msg, variant, sub)
	}
}

func (s *BotService) handleCommand(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string, sub *entities.Subscriber) {
	switch msg.Command() {
	case "start":
		name := msg.From.FirstName
		if name == "" {
			name = msg.From.UserName
		}
		s.reply(client, msg.Chat.ID, t(variant, "welcome", name))
	case "help":
		s.reply(client, msg.Chat.ID, t(variant, "help"))
	case "stats":
		s.reply(client, msg.Chat.ID, t(variant, "stats",
			sub.TotalRequests, sub.TextRequests, sub.VoiceRequests, sub.ImageRequests))
	case "channels":
		s.handleChannels(client, msg, variant)
	case "admin", "logincode":
		s.handleAdminLogin(client, msg, variant)
	case "adminstats":
		s.handleAdminStats(client, msg, variant)
	case "broadcast":
		s.handleBroadcastCommand(client, msg, variant)
	}
}

// handleAdminLogin mints a one-time panel login code and attaches a QR
// code pointing at the panel so the admin can open it on another device.
func (s *BotService) handleAdminLogin(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string) {
	code, err := s.auth.GenerateLoginCode(msg.From.ID)
	if err != nil {
		s.reply(client, msg.Chat.ID, t(variant, "not_admin"))
		return
	}

	caption := t(variant, "admin_panel", code, s.cfg.AdminPanelURL)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(t(variant, "open_panel"), s.cfg.AdminPanelURL)),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(variant, "show_stats"), "admin_stats")))
	png, qrErr := qrcode.Encode(s.cfg.AdminPanelURL, qrcode.Medium, 256)
	if qrErr == nil {
		if err := client.SendPhotoBytes(msg.Chat.ID, "panel.png", png, caption, &markup); err == nil {
			return
		}
	}

	fallback := tgbotapi.NewMessage(msg.Chat.ID, caption)
	fallback.ParseMode = "HTML"
	fallback.ReplyMarkup = markup
	if _, err := client.Bot.Send(fallback); err != nil {
		infrastructure.Log.Warnf("[Bot/%s] admin login reply: %v", variant, err)
	}
}

func (s *BotService) handleAdminStats(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string) {
	s.sendAdminStats(client, msg.Chat.ID, msg.From.ID, variant)
}

func (s *BotService) sendAdminStats(client *infrastructure.TelegramClient, chatID, userID int64, variant string) {
	if !s.cfg.IsAdmin(strconv.FormatInt(userID, 10)) {
		s.reply(client, chatID, t(variant, "not_admin"))
		return
	}

	dashboard, err := s.stats.Dashboard()
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] adminstats: %v", variant, err)
		s.reply(client, chatID, t(variant, "error_generic"))
		return
	}

	var b strings.Builder
	b.WriteString("📊 <b>Admin</b>\n")
	for _, bot := range dashboard.Bots {
		fmt.Fprintf(&b, "\n<b>%s</b>\n", bot.Bot)
		fmt.Fprintf(&b, "👥 %d (%d active)\n", bot.TotalSubscribers, bot.ActiveSubscribers)
		fmt.Fprintf(&b, "📨 %d total, %d today\n", bot.TotalRequests, bot.TodayRequests)
		fmt.Fprintf(&b, "🔍 %d errors found, avg %.0fms\n", bot.TotalErrors, bot.AvgProcessMs)
	}
	s.reply(client, chatID, b.String())
}

// handleChannels lists every configured channel with its id, username and
// flags. Admin-only; regular users see the join links via the membership
// gate instead.
func (s *BotService) handleChannels(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string) {
	if !s.cfg.IsAdmin(strconv.FormatInt(msg.From.ID, 10)) {
		s.reply(client, msg.Chat.ID, t(variant, "not_admin"))
		return
	}

	channels, err := s.channels.List()
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] channel list: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_generic"))
		return
	}
	s.reply(client, msg.Chat.ID, formatChannelList(variant, channels))
}

// handleBroadcastCommand sends the command's argument text to every active
// subscriber of this bot variant.
func (s *BotService) handleBroadcastCommand(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string) {
	if !s.cfg.IsAdmin(strconv.FormatInt(msg.From.ID, 10)) {
		s.reply(client, msg.Chat.ID, t(variant, "not_admin"))
		return
	}
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		s.reply(client, msg.Chat.ID, t(variant, "broadcast_usage"))
		return
	}

	post := &entities.Post{Content: text, Type: entities.PostTypeText}
	sent, failed := s.BroadcastToSubscribers(post, variant)
	s.reply(client, msg.Chat.ID, t(variant, "broadcast_done", sent, failed))
}

func (s *BotService) handleText(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string, sub *entities.Subscriber) {
	processingID := s.sendProcessing(client, msg.Chat.ID, t(variant, "processing"))
	defer client.DeleteMessage(msg.Chat.ID, processingID)

	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := s.correction.CorrectText(ctx, msg.Text, variantLanguage(variant))
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] correction: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_generic"))
		return
	}

	s.reply(client, msg.Chat.ID, formatCorrection(variant, result, ""))
	s.recordUsage(sub, variant, entities.RequestText, result, time.Since(started))
}

func (s *BotService) handleAudio(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string, sub *entities.Subscriber, kind, fileID string) {
	processingID := s.sendProcessing(client, msg.Chat.ID, t(variant, "processing_voice"))
	defer client.DeleteMessage(msg.Chat.ID, processingID)

	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	fileURL, err := client.FileURL(fileID)
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] file url: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_transcribe"))
		return
	}

	transcript, err := s.correction.Transcribe(ctx, fileURL, variantLanguage(variant))
	if err != nil || strings.TrimSpace(transcript) == "" {
		infrastructure.Log.Warnf("[Bot/%s] transcription failed: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_transcribe"))
		return
	}

	result, err := s.correction.CorrectText(ctx, transcript, variantLanguage(variant))
	if err != nil {
		result = entities.NoChanges(transcript)
	}

	header := t(variant, "transcript_header") + "\n" + escapeHTML(transcript) + "\n\n"
	s.reply(client, msg.Chat.ID, formatCorrection(variant, result, header))
	s.recordUsage(sub, variant, kind, result, time.Since(started))
}

func (s *BotService) handlePhoto(client *infrastructure.TelegramClient, msg *tgbotapi.Message, variant string, sub *entities.Subscriber) {
	processingID := s.sendProcessing(client, msg.Chat.ID, t(variant, "processing_image"))
	defer client.DeleteMessage(msg.Chat.ID, processingID)

	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// largest resolution is last
	fileID := msg.Photo[len(msg.Photo)-1].FileID
	fileURL, err := client.FileURL(fileID)
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] file url: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_generic"))
		return
	}

	result, err := s.correction.AnalyzeImage(ctx, fileURL, variantLanguage(variant))
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] image analysis: %v", variant, err)
		s.reply(client, msg.Chat.ID, t(variant, "error_generic"))
		return
	}
	if strings.TrimSpace(result.OriginalText) == "" {
		s.reply(client, msg.Chat.ID, t(variant, "no_text_found"))
		return
	}

	header := t(variant, "extracted_header") + "\n" + escapeHTML(result.OriginalText) + "\n\n"
	s.reply(client, msg.Chat.ID, formatCorrection(variant, result, header))
	s.recordUsage(sub, variant, entities.RequestImage, result, time.Since(started))
}

// requireMembership enforces the mandatory-channel gate. A check failure
// counts as not joined, so the gate fails closed.
func (s *BotService) requireMembership(client *infrastructure.TelegramClient, chatID, userID int64, variant string) bool {
	mandatory, err := s.channels.GetMandatory()
	if err != nil {
		infrastructure.Log.Errorf("[Bot/%s] mandatory channels: %v", variant, err)
		return true // DB trouble must not lock everyone out
	}
	for _, ch := range mandatory {
		if !client.IsChatMember(ch.ChannelID, userID) {
			s.sendJoinPrompt(client, chatID, variant, true)
			return false
		}
	}
	return true
}

// sendJoinPrompt lists every mandatory channel as a URL button plus a
// "check again" callback button.
func (s *BotService) sendJoinPrompt(client *infrastructure.TelegramClient, chatID int64, variant string, withCheck bool) {
	mandatory, err := s.channels.GetMandatory()
	if err != nil || len(mandatory) == 0 {
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ch := range mandatory {
		url := "https://t.me/" + strings.TrimPrefix(ch.ChannelUsername, "@")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(ch.Title, url)))
	}
	if withCheck {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t(variant, "join_check"), "check_subscription")))
	}

	msg := tgbotapi.NewMessage(chatID, t(variant, "join_required"))
	msg.ParseMode = "HTML"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := client.Bot.Send(msg); err != nil {
		infrastructure.Log.Warnf("[Bot/%s] join prompt: %v", variant, err)
	}
}

func (s *BotService) handleCallback(client *infrastructure.TelegramClient, cb *tgbotapi.CallbackQuery, variant string) {
	client.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	if cb.Message == nil {
		return
	}

	if cb.Data == "admin_stats" {
		s.sendAdminStats(client, cb.Message.Chat.ID, cb.From.ID, variant)
		return
	}
	if cb.Data != "check_subscription" {
		return
	}

	chatID := cb.Message.Chat.ID
	mandatory, err := s.channels.GetMandatory()
	if err != nil {
		return
	}
	for _, ch := range mandatory {
		if !client.IsChatMember(ch.ChannelID, cb.From.ID) {
			s.reply(client, chatID, t(variant, "join_not_verified"))
			return
		}
	}
	client.DeleteMessage(chatID, cb.Message.MessageID)
	s.reply(client, chatID, t(variant, "join_verified"))
}

// BroadcastToSubscribers delivers a post to every active subscriber of a
// variant via that variant's bot.
func (s *BotService) BroadcastToSubscribers(post *entities.Post, variant string) (sent, failed int) {
	client := s.manager.Client(variant)
	if client == nil {
		infrastructure.Log.Errorf("[Broadcast] no running bot for variant %s", variant)
		return 0, 0
	}
	return s.broadcast(client, post, variant)
}

// broadcast fans a post out to the variant's active subscribers, pacing
// sends and flipping the blocked flag on dead accounts.
func (s *BotService) broadcast(m interfaces.Messenger, post *entities.Post, variant string) (sent, failed int) {
	subs, err := s.subscribers.ListActive(variant)
	if err != nil {
		infrastructure.Log.Errorf("[Broadcast] list subscribers: %v", err)
		return 0, 0
	}

	delay := broadcastDelayText
	if post.Type == entities.PostTypeVideo {
		delay = broadcastDelayVideo
	}

	for _, sub := range subs {
		err := s.deliverPost(m, sub.TelegramID, post)
		if err != nil {
			failed++
			if infrastructure.IsBlockedError(err) {
				if err := s.subscribers.SetBlocked(variant, sub.TelegramID, true); err != nil {
					infrastructure.Log.Warnf("[Broadcast] flag blocked %s: %v", sub.TelegramID, err)
				}
			}
		} else {
			sent++
		}
		time.Sleep(delay)
	}

	infrastructure.Log.Infof("[Broadcast] %s post %d: %d sent, %d failed", variant, post.ID, sent, failed)
	return sent, failed
}

// SendPostToChannel delivers a post to its configured channel via the
// turkish (primary) bot.
func (s *BotService) SendPostToChannel(post *entities.Post) error {
	client := s.manager.Client(entities.BotTurkish)
	if client == nil {
		return fmt.Errorf("primary bot not running")
	}
	if post.ChannelID == "" {
		return fmt.Errorf("post %d has no channel", post.ID)
	}
	return s.deliverPost(client, post.ChannelID, post)
}

func (s *BotService) deliverPost(messenger interfaces.Messenger, to string, post *entities.Post) error {
	switch post.Type {
	case entities.PostTypePhoto:
		return messenger.SendPhoto(to, post.MediaSource(), post.Content, post.ButtonText, post.ButtonURL)
	case entities.PostTypeVideo:
		return messenger.SendVideo(to, post.MediaSource(), post.Content, post.ButtonText, post.ButtonURL)
	default:
		return messenger.SendText(to, post.Content, post.ButtonText, post.ButtonURL)
	}
}

func (s *BotService) recordUsage(sub *entities.Subscriber, variant, kind string, result *entities.CorrectionResult, elapsed time.Duration) {
	if err := s.subscribers.IncrementRequests(variant, sub.TelegramID, kind); err != nil {
		infrastructure.Log.Warnf("[Bot/%s] counter increment: %v", variant, err)
	}
	err := s.usage.Insert(&entities.UsageRecord{
		TelegramID:    sub.TelegramID,
		Bot:           variant,
		Type:          kind,
		OriginalText:  result.OriginalText,
		CorrectedText: result.CorrectedText,
		ErrorsCount:   result.ErrorsCount,
		ProcessingMs:  elapsed.Milliseconds(),
	})
	if err != nil {
		infrastructure.Log.Warnf("[Bot/%s] usage insert: %v", variant, err)
	}
}

func (s *BotService) reply(client *infrastructure.TelegramClient, chatID int64, text string) {
	if err := client.SendText(strconv.FormatInt(chatID, 10), text, "", ""); err != nil {
		infrastructure.Log.Warnf("[Bot] reply to %d: %v", chatID, err)
	}
}

// sendProcessing posts the "working on it" placeholder and returns its
// message id for later deletion. Returns 0 when sending failed.
func (s *BotService) sendProcessing(client *infrastructure.TelegramClient, chatID int64, text string) int {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := client.Bot.Send(msg)
	if err != nil {
		return 0
	}
	return sent.MessageID
}

// formatChannelList renders the admin /channels listing: title, username,
// raw channel id and the mandatory/inactive markers.
func formatChannelList(variant string, channels []entities.Channel) string {
	if len(channels) == 0 {
		return t(variant, "channels_empty")
	}

	var b strings.Builder
	b.WriteString(t(variant, "channels_header"))
	for _, ch := range channels {
		fmt.Fprintf(&b, "\n\n<b>%s</b>\n%s · <code>%s</code>",
			escapeHTML(ch.Title), escapeHTML(ch.ChannelUsername), escapeHTML(ch.ChannelID))
		if ch.IsMandatory {
			b.WriteString(" · 🔒")
		}
		if !ch.IsActive {
			b.WriteString(" · 💤")
		}
	}
	return b.String()
}

// formatCorrection renders the user-facing reply: an optional header
// (transcript or extracted text), then either "no errors" or the corrected
// text with the error list.
func formatCorrection(variant string, result *entities.CorrectionResult, header string) string {
	var b strings.Builder
	b.WriteString(header)

	if result.ErrorsCount == 0 {
		b.WriteString(t(variant, "no_errors"))
		return b.String()
	}

	b.WriteString(t(variant, "corrected_header"))
	b.WriteString("\n")
	b.WriteString(escapeHTML(result.CorrectedText))
	b.WriteString("\n\n")
	b.WriteString(t(variant, "errors_header", result.ErrorsCount))
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "\n• <s>%s</s> → <b>%s</b>", escapeHTML(e.Original), escapeHTML(e.Corrected))
		if e.Explanation != "" {
			fmt.Fprintf(&b, "\n  <i>%s</i>", escapeHTML(e.Explanation))
		}
	}
	return b.String()
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
