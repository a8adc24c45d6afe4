package service

import (
	"fmt"
	"time"

	"github.com/appgrid/marketplace-backend/internal/models"
	"github.com/appgrid/marketplace-backend/internal/repository"
)

const (
	EventDownload  = "download"
	EventInstall   = "install"
	EventUninstall = "uninstall"
	EventLaunch    = "launch"
	EventCrash     = "crash"
)

const (
	RevenuePurchase = "purchase"
	RevenueRefund   = "refund"
)

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepositoryInterface
	appRepo       repository.AppRepositoryInterface
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepositoryInterface, appRepo repository.AppRepositoryInterface) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo, appRepo: appRepo}
}

// RecordEvent lazily creates today's row for the app and bumps the matching
// counter atomically. Crash events also recompute the running crash rate.
func (s *AnalyticsService) RecordEvent(appID uint, eventType string) error {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return ErrAppNotFound
	}

	now := time.Now()
	switch eventType {
	case EventCrash:
		_, err := s.analyticsRepo.RecordCrash(appID, now)
		return err
	case EventDownload, EventInstall, EventUninstall, EventLaunch:
		return s.analyticsRepo.AddEvent(appID, now, eventType)
	default:
		return fmt.Errorf("unknown event type: %s", eventType)
	}
}

// RecordRevenue accumulates revenue for today. Refunds go to their own
// counter rather than subtracting, so both gross figures are preserved.
func (s *AnalyticsService) RecordRevenue(appID uint, amount float64, revenueType string) error {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return ErrAppNotFound
	}
	if amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return s.analyticsRepo.AddRevenue(appID, time.Now(), amount, revenueType == RevenueRefund)
}

func (s *AnalyticsService) RecordSession(appID uint, duration time.Duration) error {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return ErrAppNotFound
	}
	return s.analyticsRepo.AddSession(appID, time.Now(), duration.Seconds())
}

func (s *AnalyticsService) ReportActiveUsers(appID uint, count int64) error {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return ErrAppNotFound
	}
	return s.analyticsRepo.SetPeakActiveUsers(appID, time.Now(), count)
}

// GetAnalyticsSummary folds the daily rows in [from, to]: additive metrics
// are summed, crash rate is averaged across days, and peak active users is
// the maximum daily value, not a sum.
func (s *AnalyticsService) GetAnalyticsSummary(appID uint, from, to time.Time) (*models.AnalyticsSummary, error) {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return nil, ErrAppNotFound
	}

	rows, err := s.analyticsRepo.Range(appID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{AppID: appID, Days: len(rows)}
	var crashRateSum float64
	var sessionSum float64
	var sessionCount int64
	for _, row := range rows {
		summary.Downloads += row.Downloads
		summary.Installations += row.Installations
		summary.Uninstalls += row.Uninstalls
		summary.Launches += row.Launches
		summary.Revenue += row.Revenue
		summary.Refunds += row.Refunds
		if row.ActiveUsers > summary.PeakActiveUsers {
			summary.PeakActiveUsers = row.ActiveUsers
		}
		crashRateSum += row.CrashRate
		sessionSum += row.SessionDurationSum
		sessionCount += row.SessionCount
	}
	if len(rows) > 0 {
		summary.AvgCrashRate = crashRateSum / float64(len(rows))
	}
	if sessionCount > 0 {
		summary.AvgSessionSecs = sessionSum / float64(sessionCount)
	}
	return summary, nil
}

// GetDailySeries returns the raw per-day rows for dashboard charts.
func (s *AnalyticsService) GetDailySeries(appID uint, from, to time.Time) ([]models.DeveloperAnalytics, error) {
	if _, err := s.appRepo.FindByID(appID); err != nil {
		return nil, ErrAppNotFound
	}
	return s.analyticsRepo.Range(appID, from, to)
}
