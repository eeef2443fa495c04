package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/db"
	"github.com/corvidian/backend/internal/mail"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mail.Message
	fail map[string]bool
}

func (s *fakeSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[msg.To] {
		return errors.New("transport refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSender) messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.sent...)
}

type deliveryFixture struct {
	gdb         *gorm.DB
	sender      *fakeSender
	dispatcher  *mail.Dispatcher
	delivery    *DeliveryService
	newsletters *NewsletterService
	subscribers *SubscriberService
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	gdb := setupServiceTestDB(t)
	composer, _, mediaRoot := newTestComposer(t, "https://corvidian.io")

	sender := &fakeSender{fail: map[string]bool{}}
	dispatcher := mail.NewDispatcher(sender, 1, 16)

	newsletters := NewNewsletterService(gdb, composer, mediaRoot)
	subscribers := NewSubscriberService(gdb)
	delivery := NewDeliveryService(
		gdb, composer, sender, dispatcher,
		subscribers, newsletters,
		"newsletter@corvidian.io", "ops@corvidian.io",
	)

	return &deliveryFixture{
		gdb:         gdb,
		sender:      sender,
		dispatcher:  dispatcher,
		delivery:    delivery,
		newsletters: newsletters,
		subscribers: subscribers,
	}
}

func (f *deliveryFixture) seedSubscribers(t *testing.T, emails ...string) {
	t.Helper()
	for _, email := range emails {
		if _, _, err := f.subscribers.Subscribe(email, "test"); err != nil {
			t.Fatalf("seed subscriber %s: %v", email, err)
		}
	}
}

func (f *deliveryFixture) seedCampaign(t *testing.T) *db.Campaign {
	t.Helper()
	campaign, err := f.newsletters.CreateCampaign(NewsletterInput{
		Subject: "Launch",
		Body:    "<p>We shipped.</p>",
	})
	if err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return campaign
}

func TestSendCampaignWithZeroSubscribers(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)

	count, err := f.delivery.SendCampaign(context.Background(), campaign.ID, "")
	if err != nil {
		t.Fatalf("send campaign: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 sends, got %d", count)
	}

	reloaded, err := f.newsletters.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if reloaded.IsSent {
		t.Fatalf("campaign must stay unsent with zero subscribers")
	}
}

func TestSendCampaignMarksSentAndCountsSuccesses(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)
	f.seedSubscribers(t, "a@example.com", "b@example.com", "c@example.com")
	f.sender.fail["b@example.com"] = true

	count, err := f.delivery.SendCampaign(context.Background(), campaign.ID, "")
	if err != nil {
		t.Fatalf("send campaign: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 successful sends, got %d", count)
	}

	reloaded, err := f.newsletters.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if !reloaded.IsSent {
		t.Fatalf("campaign must be marked sent after attempting all recipients")
	}
	if reloaded.SentAt == nil {
		t.Fatalf("sent_at must be recorded")
	}

	for _, msg := range f.sender.messages() {
		if msg.Subject != "Launch" {
			t.Fatalf("unexpected subject %q", msg.Subject)
		}
		if !strings.Contains(msg.HTML, "We shipped.") {
			t.Fatalf("expected composed body in message")
		}
	}
}

func TestSendCampaignAlreadySentIsNoOp(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)
	f.seedSubscribers(t, "a@example.com")

	if _, err := f.delivery.SendCampaign(context.Background(), campaign.ID, ""); err != nil {
		t.Fatalf("first send: %v", err)
	}
	firstCount := len(f.sender.messages())

	count, err := f.delivery.SendCampaign(context.Background(), campaign.ID, "")
	if err != nil {
		t.Fatalf("second send: %v", err)
	}
	if count != 0 {
		t.Fatalf("re-send must return 0, got %d", count)
	}
	if len(f.sender.messages()) != firstCount {
		t.Fatalf("re-send must not dispatch any email")
	}
}

func TestSendCampaignAllFailuresStillMarksSent(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)
	f.seedSubscribers(t, "a@example.com", "b@example.com")
	f.sender.fail["a@example.com"] = true
	f.sender.fail["b@example.com"] = true

	count, err := f.delivery.SendCampaign(context.Background(), campaign.ID, "")
	if err != nil {
		t.Fatalf("send campaign: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 successes, got %d", count)
	}

	reloaded, err := f.newsletters.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if !reloaded.IsSent {
		t.Fatalf("campaign is marked sent even when every send fails")
	}
}

func TestSendTestRequiresAdminEmail(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)

	admin := db.User{Username: "root", Password: "hash"}
	if err := f.gdb.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	err := f.delivery.SendTest(context.Background(), CampaignContent(campaign), admin.ID, "")
	if !errors.Is(err, ErrAdminEmailMissing) {
		t.Fatalf("expected ErrAdminEmailMissing, got %v", err)
	}
	if len(f.sender.messages()) != 0 {
		t.Fatalf("no message may be sent without an admin email")
	}
}

func TestSendTestDoesNotMutateSentState(t *testing.T) {
	f := newDeliveryFixture(t)
	campaign := f.seedCampaign(t)

	admin := db.User{Username: "root", Password: "hash", Email: "root@corvidian.io"}
	if err := f.gdb.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}

	if err := f.delivery.SendTest(context.Background(), CampaignContent(campaign), admin.ID, ""); err != nil {
		t.Fatalf("test send: %v", err)
	}

	messages := f.sender.messages()
	if len(messages) != 1 || messages[0].To != "root@corvidian.io" {
		t.Fatalf("expected one message to the acting admin, got %v", messages)
	}

	reloaded, err := f.newsletters.GetCampaign(campaign.ID)
	if err != nil {
		t.Fatalf("reload campaign: %v", err)
	}
	if reloaded.IsSent {
		t.Fatalf("test send must not mark the campaign sent")
	}
}

func TestQueueWelcomeUsesActiveMessage(t *testing.T) {
	f := newDeliveryFixture(t)

	if _, err := f.newsletters.CreateWelcomeMessage(NewsletterInput{
		Subject:  "Welcome aboard",
		Body:     "<p>Glad you joined.</p>",
		IsActive: true,
	}); err != nil {
		t.Fatalf("create welcome message: %v", err)
	}

	f.delivery.QueueWelcome("new@example.com", "")
	f.dispatcher.Close()

	messages := f.sender.messages()
	if len(messages) != 1 {
		t.Fatalf("expected one queued welcome, got %d", len(messages))
	}
	if messages[0].Subject != "Welcome aboard" {
		t.Fatalf("unexpected subject %q", messages[0].Subject)
	}
	if !strings.Contains(messages[0].HTML, "Glad you joined.") {
		t.Fatalf("expected composed welcome body")
	}
}

func TestQueueWelcomeFallsBackWithoutActiveMessage(t *testing.T) {
	f := newDeliveryFixture(t)

	f.delivery.QueueWelcome("new@example.com", "")
	f.dispatcher.Close()

	messages := f.sender.messages()
	if len(messages) != 1 {
		t.Fatalf("expected one queued welcome, got %d", len(messages))
	}
	if messages[0].Subject != welcomeFallbackSubject {
		t.Fatalf("unexpected subject %q", messages[0].Subject)
	}
	if messages[0].HTML != "" {
		t.Fatalf("fallback welcome is plain text only")
	}
	if messages[0].Text != welcomeFallbackText {
		t.Fatalf("unexpected fallback text %q", messages[0].Text)
	}
}

func TestQueueLeadNotificationRendersMarkdown(t *testing.T) {
	f := newDeliveryFixture(t)

	lead := &db.ConsultationLead{
		Name:     "Budi",
		Email:    "budi@example.com",
		Phone:    "+62811111111",
		Company:  "PT Maju",
		Question: "How do we start?",
	}
	f.delivery.QueueLeadNotification(lead)
	f.dispatcher.Close()

	messages := f.sender.messages()
	if len(messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(messages))
	}
	msg := messages[0]
	if msg.To != "ops@corvidian.io" {
		t.Fatalf("notification must go to the configured receiver, got %s", msg.To)
	}
	if !strings.Contains(msg.HTML, "<strong>New consultation lead</strong>") {
		t.Fatalf("expected rendered markdown in HTML body: %s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "PT Maju") {
		t.Fatalf("expected lead fields in body")
	}
}
