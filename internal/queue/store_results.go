package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipforge/internal/analysis/speech"
	"clipforge/internal/scoring"
	"clipforge/internal/selection"
)

// SaveTranscript upserts the transcript for a video.
func (s *Store) SaveTranscript(ctx context.Context, videoID string, transcript speech.Transcript) error {
	data, err := json.Marshal(transcript)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (video_id, language, transcript_json, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET
             language = excluded.language,
             transcript_json = excluded.transcript_json,
             created_at = excluded.created_at`,
		videoID,
		nullableString(transcript.Language),
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// TranscriptByVideo loads a stored transcript. It returns ok=false when the
// video has none.
func (s *Store) TranscriptByVideo(ctx context.Context, videoID string) (speech.Transcript, bool, error) {
	var raw string
	err := s.db.QueryRowContext(
		ctx,
		`SELECT transcript_json FROM transcripts WHERE video_id = ?`,
		videoID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return speech.Transcript{}, false, nil
	}
	if err != nil {
		return speech.Transcript{}, false, fmt.Errorf("load transcript: %w", err)
	}
	var transcript speech.Transcript
	if err := json.Unmarshal([]byte(raw), &transcript); err != nil {
		return speech.Transcript{}, false, fmt.Errorf("decode transcript: %w", err)
	}
	return transcript, true, nil
}

// ReplaceCandidates swaps a video's candidate set atomically, so readers
// never observe a mix of old and new results.
func (s *Store) ReplaceCandidates(ctx context.Context, videoID string, candidates []selection.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin candidates tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("delete prior candidates: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, candidate := range candidates {
		features, err := json.Marshal(candidate.Features)
		if err != nil {
			return fmt.Errorf("marshal features: %w", err)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO candidates (id, video_id, start_s, end_s, score, features_json, thumb_s, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			candidate.ID,
			videoID,
			candidate.Window.Start,
			candidate.Window.End,
			candidate.Score,
			string(features),
			candidate.ThumbSeconds,
			now,
		); err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit candidates: %w", err)
	}
	return nil
}

// CandidatesByVideo returns a video's candidates ordered by score.
func (s *Store) CandidatesByVideo(ctx context.Context, videoID string) ([]selection.Candidate, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, start_s, end_s, score, features_json, thumb_s
         FROM candidates WHERE video_id = ? ORDER BY score DESC, start_s`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []selection.Candidate
	for rows.Next() {
		var (
			candidate    selection.Candidate
			featuresJSON string
		)
		if err := rows.Scan(
			&candidate.ID,
			&candidate.Window.Start,
			&candidate.Window.End,
			&candidate.Score,
			&featuresJSON,
			&candidate.ThumbSeconds,
		); err != nil {
			return nil, err
		}
		var features scoring.Features
		if err := json.Unmarshal([]byte(featuresJSON), &features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
		candidate.Features = features
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}
