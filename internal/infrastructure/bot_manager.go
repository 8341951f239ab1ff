package infrastructure

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotInstance is one running bot variant (turkish or korean) with its own
// polling loop.
type BotInstance struct {
	Client    *TelegramClient
	Variant   string
	StopChan  chan struct{}
	IsRunning bool
	mu        sync.Mutex
}

// BotManager runs one bot per language variant and fans updates out to the
// injected handler.
type BotManager struct {
	bots map[string]*BotInstance
	mu   sync.RWMutex

	// UpdateHandler processes every incoming update. Set before Start.
	UpdateHandler func(client *TelegramClient, update tgbotapi.Update, variant string)
}

func NewBotManager() *BotManager {
	return &BotManager{bots: make(map[string]*BotInstance)}
}

// Start registers a variant and begins polling. A variant already running
// is returned as is.
func (m *BotManager) Start(variant, token string) (*BotInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.bots[variant]; ok && existing.IsRunning {
		return existing, nil
	}

	client, err := NewTelegramClient(token)
	if err != nil {
		return nil, err
	}

	instance := &BotInstance{
		Client:   client,
		Variant:  variant,
		StopChan: make(chan struct{}),
	}
	m.bots[variant] = instance

	go m.startPolling(instance)

	return instance, nil
}

// Client returns the running client for a variant, or nil.
func (m *BotManager) Client(variant string) *TelegramClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if instance, ok := m.bots[variant]; ok {
		return instance.Client
	}
	return nil
}

func (m *BotManager) startPolling(instance *BotInstance) {
	instance.mu.Lock()
	instance.IsRunning = true
	instance.mu.Unlock()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := instance.Client.Bot.GetUpdatesChan(u)

	Log.Infof("[BotManager] %s bot polling as @%s", instance.Variant, instance.Client.Username())

	for {
		select {
		case <-instance.StopChan:
			Log.Infof("[BotManager] %s bot stopped", instance.Variant)
			instance.mu.Lock()
			instance.IsRunning = false
			instance.mu.Unlock()
			return
		case update := <-updates:
			if m.UpdateHandler != nil {
				go m.UpdateHandler(instance.Client, update, instance.Variant)
			}
		}
	}
}

// StopAll shuts every polling loop down for graceful shutdown.
func (m *BotManager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, instance := range m.bots {
		close(instance.StopChan)
		instance.Client.Bot.StopReceivingUpdates()
	}
	m.bots = make(map[string]*BotInstance)
}
