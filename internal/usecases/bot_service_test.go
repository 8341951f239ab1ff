package usecases

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"

	"hilalbot/internal/entities"
)

type fakeSubscriberStore struct {
	subs    []entities.Subscriber
	blocked []string
}

func (f *fakeSubscriberStore) GetOrCreate(bot, telegramID, username, firstName, lastName, language string) (*entities.Subscriber, error) {
	return &entities.Subscriber{Bot: bot, TelegramID: telegramID}, nil
}

func (f *fakeSubscriberStore) IncrementRequests(bot, telegramID, kind string) error { return nil }

func (f *fakeSubscriberStore) ListActive(bot string) ([]entities.Subscriber, error) {
	return f.subs, nil
}

func (f *fakeSubscriberStore) SetBlocked(bot, telegramID string, blocked bool) error {
	if blocked {
		f.blocked = append(f.blocked, telegramID)
	}
	return nil
}

// fakeMessenger fails deliveries to the chats listed in failFor.
type fakeMessenger struct {
	failFor map[string]error
	sent    []string
}

func (f *fakeMessenger) SendText(to, text, buttonText, buttonURL string) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeMessenger) SendPhoto(to, media, caption, buttonText, buttonURL string) error {
	return f.SendText(to, caption, buttonText, buttonURL)
}

func (f *fakeMessenger) SendVideo(to, media, caption, buttonText, buttonURL string) error {
	return f.SendText(to, caption, buttonText, buttonURL)
}

func TestFormatCorrectionNoErrors(t *testing.T) {
	result := entities.NoChanges("Bugün hava güzel.")

	out := formatCorrection("turkish", result, "")
	if out != t9("turkish", "no_errors") {
		t.Errorf("got %q, want the no-errors message", out)
	}
}

func TestFormatCorrectionWithErrors(t *testing.T) {
	result := &entities.CorrectionResult{
		OriginalText:  "Bu cok guzel",
		CorrectedText: "Bu çok güzel",
		ErrorsCount:   2,
		Errors: []entities.CorrectionError{
			{Original: "cok", Corrected: "çok", Explanation: "ç eksik"},
			{Original: "guzel", Corrected: "güzel"},
		},
	}

	out := formatCorrection("turkish", result, "")
	for _, want := range []string{"Bu çok güzel", "çok", "güzel", "ç eksik"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCorrectionEscapesHTML(t *testing.T) {
	result := &entities.CorrectionResult{
		OriginalText:  "a<b",
		CorrectedText: "a < b",
		ErrorsCount:   1,
		Errors:        []entities.CorrectionError{{Original: "a<b", Corrected: "a < b"}},
	}

	out := formatCorrection("turkish", result, "")
	if strings.Contains(out, "a<b") {
		t.Error("user text must be HTML-escaped")
	}
	if !strings.Contains(out, "a&lt;b") {
		t.Error("expected escaped form in output")
	}
}

func TestMessageCatalogFallback(t *testing.T) {
	// korean catalog has its own copy
	if t9("korean", "no_errors") == t9("turkish", "no_errors") {
		t.Error("korean and turkish catalogs should differ")
	}
	// unknown variant falls back to turkish
	if t9("klingon", "no_errors") != t9("turkish", "no_errors") {
		t.Error("unknown variant should fall back to turkish")
	}
	// formatting args are applied
	if !strings.Contains(t9("turkish", "stats", 4, 2, 1, 1), "4") {
		t.Error("stats message should embed the counters")
	}
}

func TestBroadcastFlagsBlockedSubscribers(t *testing.T) {
	store := &fakeSubscriberStore{}
	for i := 1; i <= 10; i++ {
		store.subs = append(store.subs, entities.Subscriber{TelegramID: strconv.Itoa(i)})
	}
	m := &fakeMessenger{failFor: map[string]error{
		"2": errors.New("Forbidden: bot was blocked by the user"),
		"5": errors.New("Forbidden: user is deactivated"),
		"9": errors.New("Bad Request: chat not found"),
	}}

	s := &BotService{subscribers: store}
	post := &entities.Post{ID: 1, Content: "duyuru", Type: entities.PostTypeText}
	sent, failed := s.broadcast(m, post, entities.BotTurkish)

	if sent != 7 || failed != 3 {
		t.Fatalf("sent=%d failed=%d, want 7/3", sent, failed)
	}
	sort.Strings(store.blocked)
	if want := []string{"2", "5", "9"}; !equalStrings(store.blocked, want) {
		t.Errorf("blocked %v, want %v", store.blocked, want)
	}
	if len(m.sent) != 7 {
		t.Errorf("delivered to %d chats, want 7", len(m.sent))
	}
}

func TestBroadcastTransientFailureNotFlagged(t *testing.T) {
	store := &fakeSubscriberStore{subs: []entities.Subscriber{{TelegramID: "1"}, {TelegramID: "2"}}}
	m := &fakeMessenger{failFor: map[string]error{
		"1": errors.New("Too Many Requests: retry after 5"),
	}}

	s := &BotService{subscribers: store}
	sent, failed := s.broadcast(m, &entities.Post{Content: "x", Type: entities.PostTypeText}, entities.BotTurkish)

	if sent != 1 || failed != 1 {
		t.Fatalf("sent=%d failed=%d, want 1/1", sent, failed)
	}
	if len(store.blocked) != 0 {
		t.Errorf("transient failure must not flip the blocked flag, got %v", store.blocked)
	}
}

func TestFormatChannelList(t *testing.T) {
	channels := []entities.Channel{
		{Title: "Haberler", ChannelUsername: "@haberler", ChannelID: "-100123", IsMandatory: true, IsActive: true},
		{Title: "Arşiv", ChannelUsername: "@arsiv", ChannelID: "-100456", IsActive: false},
	}

	out := formatChannelList("turkish", channels)
	for _, want := range []string{"Haberler", "@haberler", "-100123", "Arşiv", "@arsiv"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, t9("turkish", "channels_header")) {
		t.Error("listing should start with the header")
	}
}

func TestFormatChannelListEmpty(t *testing.T) {
	if out := formatChannelList("korean", nil); out != t9("korean", "channels_empty") {
		t.Errorf("empty listing got %q", out)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// t9 avoids shadowing the *testing.T parameter name in table helpers.
func t9(variant, key string, args ...interface{}) string {
	return t(variant, key, args...)
}
