package usecases

import (
	"hilalbot/internal/entities"
	"hilalbot/internal/repository"
)

// BotStats is one variant's slice of the dashboard.
type BotStats struct {
	Bot               string  `json:"bot"`
	TotalSubscribers  int     `json:"total_subscribers"`
	ActiveSubscribers int     `json:"active_subscribers"`
	TotalRequests     int     `json:"total_requests"`
	TodayRequests     int     `json:"today_requests"`
	TotalErrors       int     `json:"total_errors"`
	AvgProcessMs      float64 `json:"avg_processing_ms"`
}

// Dashboard is the admin panel landing payload.
type Dashboard struct {
	Bots    []BotStats             `json:"bots"`
	Overall repository.UsageTotals `json:"overall"`
}

type StatsUsecase struct {
	subscribers *repository.SubscriberRepository
	usage       *repository.UsageRepository
}

func NewStatsUsecase(subs *repository.SubscriberRepository, usage *repository.UsageRepository) *StatsUsecase {
	return &StatsUsecase{subscribers: subs, usage: usage}
}

func (uc *StatsUsecase) Dashboard() (*Dashboard, error) {
	overall, err := uc.usage.Totals("")
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{Overall: *overall}
	for _, bot := range []string{entities.BotTurkish, entities.BotKorean} {
		stats, err := uc.botStats(bot)
		if err != nil {
			return nil, err
		}
		dashboard.Bots = append(dashboard.Bots, *stats)
	}
	return dashboard, nil
}

func (uc *StatsUsecase) botStats(bot string) (*BotStats, error) {
	total, active, err := uc.subscribers.Counts(bot)
	if err != nil {
		return nil, err
	}
	totals, err := uc.usage.Totals(bot)
	if err != nil {
		return nil, err
	}
	return &BotStats{
		Bot:               bot,
		TotalSubscribers:  total,
		ActiveSubscribers: active,
		TotalRequests:     totals.TotalRequests,
		TodayRequests:     totals.TodayRequests,
		TotalErrors:       totals.TotalErrors,
		AvgProcessMs:      totals.AvgProcessMs,
	}, nil
}

func (uc *StatsUsecase) Daily(bot string, days int) ([]repository.DailyUsage, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	return uc.usage.Daily(bot, days)
}

func (uc *StatsUsecase) TopUsers(bot string, limit int) ([]repository.TopUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return uc.usage.TopUsers(bot, limit)
}

func (uc *StatsUsecase) Recent(bot string, limit int) ([]entities.UsageRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return uc.usage.Recent(bot, limit)
}

// Public returns the unauthenticated aggregate: total requests processed
// across both bots, for the landing page counter.
func (uc *StatsUsecase) Public() (map[string]interface{}, error) {
	overall, err := uc.usage.Totals("")
	if err != nil {
		return nil, err
	}
	turkishTotal, _, err := uc.subscribers.Counts(entities.BotTurkish)
	if err != nil {
		return nil, err
	}
	koreanTotal, _, err := uc.subscribers.Counts(entities.BotKorean)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"total_requests":    overall.TotalRequests,
		"total_subscribers": turkishTotal + koreanTotal,
	}, nil
}
