package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"orderflow/internal/core/application/usecases/commands"
)

type ExpireChallengesHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireChallengesCommand) (int64, error)
}

// ChallengeExpiryJob clears delivery challenges whose expiry has passed. Verification
// already rejects expired codes; this keeps dead hashes and nonces out of the table.
type ChallengeExpiryJob struct {
	handler  ExpireChallengesHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewChallengeExpiryJob(handler ExpireChallengesHandler, schedule string, logger *slog.Logger) *ChallengeExpiryJob {
	return &ChallengeExpiryJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "challenge_expiry_job"),
	}
}

func (j *ChallengeExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Challenge expiry job started", "schedule", j.schedule)
	return nil
}

// Run performs one pass. Start schedules it; tests call it directly.
func (j *ChallengeExpiryJob) Run() {
	ctx := context.Background()

	cleared, err := j.handler.Handle(ctx, commands.NewExpireChallengesCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Challenge expiry job failed", "error", err)
		return
	}
	if cleared > 0 {
		j.logger.InfoContext(ctx, "Expired delivery challenges cleared", "orders", cleared)
	}
}

// Stop waits for a running pass to finish.
func (j *ChallengeExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Challenge expiry job stopped")
}
