package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// Notifier delivers a plain text message to a chat.
// A recipient that blocked the bot is reported with an apperror.ErrBlocked error.
type Notifier interface {
	SendMessage(chatID int64, text string) error
}

// DigestConfig holds configuration for the daily digest
type DigestConfig struct {
	// Cron expression, minute resolution
	Schedule string
	Location *time.Location
	// How many leaders the digest lists
	TopN int
}

// DefaultDigestConfig sends the top five every day at 20:00 UTC
func DefaultDigestConfig() DigestConfig {
	return DigestConfig{
		Schedule: "0 20 * * *",
		Location: time.UTC,
		TopN:     5,
	}
}

// DigestReport summarises one broadcast
type DigestReport struct {
	Recipients  int
	Sent        int
	Failed      int
	Deactivated int
}

// DigestUseCase broadcasts the daily leaderboard summary to active users
type DigestUseCase struct {
	notifier Notifier
	users    *UserUseCase
	rating   *RatingUseCase
	config   DigestConfig
}

// NewDigestUseCase creates a new digest use case
func NewDigestUseCase(notifier Notifier, users *UserUseCase, rating *RatingUseCase, config DigestConfig) *DigestUseCase {
	defaults := DefaultDigestConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if config.TopN <= 0 {
		config.TopN = defaults.TopN
	}

	return &DigestUseCase{
		notifier: notifier,
		users:    users,
		rating:   rating,
		config:   config,
	}
}

// Start schedules the digest and blocks until ctx is cancelled
func (uc *DigestUseCase) Start(ctx context.Context) error {
	scheduler := cron.New(cron.WithLocation(uc.config.Location))

	_, err := scheduler.AddFunc(uc.config.Schedule, func() {
		report, err := uc.RunOnce(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Daily digest failed")
			return
		}
		logger.Info().
			Int("recipients", report.Recipients).
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Int("deactivated", report.Deactivated).
			Msg("Daily digest sent")
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", uc.config.Schedule, err)
	}

	logger.Info().
		Str("schedule", uc.config.Schedule).
		Str("timezone", uc.config.Location.String()).
		Msg("Starting digest scheduler")
	scheduler.Start()

	<-ctx.Done()
	logger.Info().Msg("Digest scheduler stopping...")
	<-scheduler.Stop().Done()
	return nil
}

// Compose builds the digest text from the current totals
func (uc *DigestUseCase) Compose(ctx context.Context) (string, error) {
	total, err := uc.rating.TotalTaps(ctx)
	if err != nil {
		return "", err
	}

	top, err := uc.rating.TopUsers(ctx, uc.config.TopN)
	if err != nil {
		return "", err
	}

	return FormatDigest(total, top), nil
}

// RunOnce sends the digest to every active user.
// Individual delivery failures are logged and counted, never returned.
func (uc *DigestUseCase) RunOnce(ctx context.Context) (DigestReport, error) {
	var report DigestReport

	recipients, err := uc.users.ListActiveUsers(ctx)
	if err != nil {
		return report, err
	}

	text, err := uc.Compose(ctx)
	if err != nil {
		return report, err
	}

	report.Recipients = len(recipients)
	for _, u := range recipients {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		uc.deliver(ctx, u, text, &report)
	}

	return report, nil
}

func (uc *DigestUseCase) deliver(ctx context.Context, u *user.User, text string, report *DigestReport) {
	err := uc.notifier.SendMessage(int64(u.TelegramID()), text)
	if err == nil {
		report.Sent++
		metrics.IncDigestMessage("sent")
		return
	}

	report.Failed++
	metrics.IncDigestMessage("failed")
	logger.Error().
		Err(err).
		Int64("telegram_id", int64(u.TelegramID())).
		Msg("Failed to send digest")

	if !apperror.IsBlocked(err) {
		return
	}

	if err := uc.users.DeactivateByTelegramID(ctx, u.TelegramID()); err != nil {
		logger.Error().Err(err).Int64("telegram_id", int64(u.TelegramID())).Msg("Failed to deactivate user")
		return
	}
	report.Deactivated++
	logger.Warn().Int64("telegram_id", int64(u.TelegramID())).Msg("User blocked the bot, deactivated")
}

// FormatDigest renders the digest message
func FormatDigest(total int64, top []*user.User) string {
	var b strings.Builder
	b.WriteString("📊 Ежедневный дайджест\n\n")
	fmt.Fprintf(&b, "Всего нажатий: %d\n\n", total)
	b.WriteString("Топ пользователей:\n")
	for i, u := range top {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, u.DisplayName(), u.Taps())
	}
	return b.String()
}
