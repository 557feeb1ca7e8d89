package store

import (
	"context"
	"time"
)

// LLMEvent records a single LLM API call.
type LLMEvent struct {
	ID           int64
	RequestID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	CreatedAt    time.Time
}

// LLMUsage aggregates events per model and purpose.
type LLMUsage struct {
	Model        string
	Purpose      string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// LLMEventRepo is the append-only LLM request log.
type LLMEventRepo struct {
	r runner
}

// Append records ev.
func (repo *LLMEventRepo) Append(ctx context.Context, ev LLMEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := repo.r.insert(ctx,
		`INSERT INTO llm_events (request_id, provider, model, purpose, input_tokens, output_tokens,
		 latency_ms, success, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RequestID, ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens,
		ev.LatencyMs, ev.Success, ev.ErrorMessage, dbTime(ev.CreatedAt))
	return repo.r.classify("append llm event", err)
}

// Recent returns up to limit events, newest first.
func (repo *LLMEventRepo) Recent(ctx context.Context, limit int) ([]LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := repo.r.query(ctx,
		`SELECT id, request_id, provider, model, purpose, input_tokens, output_tokens,
		 latency_ms, success, error_message, created_at
		 FROM llm_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, repo.r.classify("list llm events", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		var (
			ev      LLMEvent
			created timeValue
		)
		if err := rows.Scan(&ev.ID, &ev.RequestID, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage, &created); err != nil {
			return nil, repo.r.classify("scan llm event", err)
		}
		ev.CreatedAt = created.Time
		out = append(out, ev)
	}
	return out, repo.r.classify("list llm events", rows.Err())
}

// Usage aggregates all events by model and purpose.
func (repo *LLMEventRepo) Usage(ctx context.Context) ([]LLMUsage, error) {
	rows, err := repo.r.query(ctx,
		`SELECT model, purpose, COUNT(*),
		 SUM(CASE WHEN success THEN 0 ELSE 1 END),
		 COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		 COALESCE(AVG(latency_ms), 0)
		 FROM llm_events GROUP BY model, purpose ORDER BY model, purpose`)
	if err != nil {
		return nil, repo.r.classify("llm usage", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Model, &u.Purpose, &u.Requests, &u.Failures,
			&u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, repo.r.classify("scan llm usage", err)
		}
		out = append(out, u)
	}
	return out, repo.r.classify("llm usage", rows.Err())
}

// Prune deletes events created before cutoff and returns how many went.
func (repo *LLMEventRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := repo.r.exec(ctx, `DELETE FROM llm_events WHERE created_at < ?`, dbTime(cutoff))
	if err != nil {
		return 0, repo.r.classify("prune llm events", err)
	}
	n, err := res.RowsAffected()
	return n, repo.r.classify("prune llm events", err)
}
