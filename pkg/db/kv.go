package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dtnitsch/llm-web-summarizer/models"
)

// Keys written by the background role.
const (
	KeyLastExtractedContent = "lastExtractedContent"
	KeyExtractionTime       = "extractionTime"
)

// Put stores value under key, replacing any previous value.
func (db *DB) Put(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Get returns the value under key. ok is false when the key is absent.
func (db *DB) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (db *DB) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("failed to remove keys: %w", err)
	}
	return nil
}

// Clear deletes every key.
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (db *DB) Keys(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SaveExtraction stores content as the last extraction, stamped with at.
func (db *DB) SaveExtraction(ctx context.Context, content models.ContentRecord, at time.Time) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to encode content: %w", err)
	}
	if err := db.Put(ctx, KeyLastExtractedContent, string(data)); err != nil {
		return err
	}
	return db.Put(ctx, KeyExtractionTime, strconv.FormatInt(at.UnixMilli(), 10))
}

// LastExtraction returns the stored extraction, if any.
func (db *DB) LastExtraction(ctx context.Context) (models.ContentRecord, time.Time, bool, error) {
	var content models.ContentRecord

	raw, ok, err := db.Get(ctx, KeyLastExtractedContent)
	if err != nil || !ok {
		return content, time.Time{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return content, time.Time{}, false, fmt.Errorf("failed to decode stored content: %w", err)
	}

	at, ok, err := db.ExtractionTime(ctx)
	if err != nil {
		return content, time.Time{}, false, err
	}
	return content, at, ok, nil
}

// ExtractionTime returns when the last extraction was stored.
func (db *DB) ExtractionTime(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := db.Get(ctx, KeyExtractionTime)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s %q: %w", KeyExtractionTime, raw, err)
	}
	return time.UnixMilli(ms), true, nil
}

// RemoveExtraction deletes both extraction keys.
func (db *DB) RemoveExtraction(ctx context.Context) error {
	return db.Remove(ctx, KeyLastExtractedContent, KeyExtractionTime)
}
