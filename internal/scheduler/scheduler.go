// Package scheduler triggers the reminder job on the running server at a
// fixed cron schedule.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"invoicer/internal/logger"
	"invoicer/internal/service"
)

// TokenIssuer mints bearer tokens for outgoing calls.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// ReminderTrigger posts to the server's /process-reminders endpoint.
type ReminderTrigger struct {
	url    string
	client *http.Client
	tokens TokenIssuer
	log    zerolog.Logger
}

// NewReminderTrigger builds a trigger for serverURL. tokens may be nil when
// the server runs without auth.
func NewReminderTrigger(serverURL string, client *http.Client, tokens TokenIssuer) *ReminderTrigger {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &ReminderTrigger{
		url:    strings.TrimRight(serverURL, "/") + "/process-reminders",
		client: client,
		tokens: tokens,
		log:    logger.WithComponent("scheduler"),
	}
}

// Trigger performs one call and decodes the reminder outcome.
func (t *ReminderTrigger) Trigger(ctx context.Context) (*service.ReminderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("scheduler.Trigger: %w", err)
	}
	if t.tokens != nil {
		token, err := t.tokens.Issue("scheduler")
		if err != nil {
			return nil, fmt.Errorf("scheduler.Trigger issuing token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scheduler.Trigger: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("scheduler.Trigger reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scheduler.Trigger: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result service.ReminderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("scheduler.Trigger decoding response: %w", err)
	}
	return &result, nil
}

func (t *ReminderTrigger) run(ctx context.Context) {
	result, err := t.Trigger(ctx)
	if err != nil {
		t.log.Error().Err(err).Msg("reminder trigger failed")
		return
	}
	t.log.Info().
		Bool("skipped", result.Skipped).
		Str("reminder_type", result.ReminderType).
		Int("clients", result.ClientCount).
		Str("sent_to", result.SentTo).
		Msg(result.Message)
}

// New registers the trigger as a cron job. The caller starts and shuts down
// the returned scheduler.
func New(ctx context.Context, cron string, loc *time.Location, trigger *ReminderTrigger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(trigger.run, ctx),
		gocron.WithName("process-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("registering reminder job: %w", err)
	}
	return s, nil
}
