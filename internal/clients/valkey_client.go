package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/trendeval/config"
	"github.com/spacesedan/trendeval/internal/models"
)

const (
	VALKEY_EVALUATION_PREFIX = "evaluation"
	VALKEY_RESULT_TTL        = 30 * 24 * time.Hour
)

type ValkeyClient struct {
	Client valkey.Client
	cfg    config.ValkeyConfig
	mu     sync.Mutex
}

func valkeyOptions(cfg config.ValkeyConfig) valkey.ClientOption {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}
	return opts
}

func connectValkey(ctx context.Context, cfg config.ValkeyConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(valkeyOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return client, nil
}

func NewValkeyClient(ctx context.Context, cfg config.ValkeyConfig) (*ValkeyClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("[ValkeyClient] VALKEY_INIT_ADDRESS is not set")
	}
	client, err := connectValkey(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey")
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func (vc *ValkeyClient) recreateClient(ctx context.Context) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	vc.Client.Close()
	client, err := connectValkey(ctx, vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed", slog.String("error", err.Error()))
		return
	}
	vc.Client = client
}

func (vc *ValkeyClient) Name() string {
	return "valkey"
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

// EvaluationKey holds the latest summary of an experiment per averaging mode.
func EvaluationKey(experimentID, average string) string {
	return fmt.Sprintf("%s:%s:%s", VALKEY_EVALUATION_PREFIX, experimentID, average)
}

// EvaluationRunsKey is the set of run ids recorded for an experiment.
func EvaluationRunsKey(experimentID string) string {
	return fmt.Sprintf("%s:runs:%s", VALKEY_EVALUATION_PREFIX, experimentID)
}

// Publish stores the record as JSON under its evaluation key and adds the
// run id to the experiment's run set.
func (vc *ValkeyClient) Publish(ctx context.Context, rec models.EvaluationRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to marshal evaluation: %w", err)
	}

	key := EvaluationKey(rec.ExperimentID, rec.Average)
	runsKey := EvaluationRunsKey(rec.ExperimentID)
	ttl := int64(VALKEY_RESULT_TTL / time.Second)
	completed := []valkey.Completed{
		vc.Client.B().Set().Key(key).Value(string(payload)).Build(),
		vc.Client.B().Expire().Key(key).Seconds(ttl).Build(),
		vc.Client.B().Sadd().Key(runsKey).Member(rec.RunID).Build(),
		vc.Client.B().Expire().Key(runsKey).Seconds(ttl).Build(),
	}

	for _, res := range vc.DoMultiWithRetry(ctx, completed, 3) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to store evaluation: %w", err)
		}
	}

	slog.Info("[ValkeyClient] Stored evaluation",
		slog.String("key", key),
		slog.String("run_id", rec.RunID))
	return nil
}

func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, completed []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		results = vc.Client.DoMulti(ctx, completed...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient(ctx)
				}
				break
			}
		}
		if !hasErr || i == retries-1 {
			break
		}
		if err := waitRetry(ctx, 250*time.Millisecond); err != nil {
			slog.Warn("[ValkeyClient] Giving up retries", slog.String("error", err.Error()))
			break
		}
	}

	return results
}

// waitRetry sleeps for d unless ctx is done first.
func waitRetry(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
