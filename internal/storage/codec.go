package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const CurrentVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Save writes v under key wrapped in a versioned envelope.
func Save(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: marshal %s: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: CurrentVersion, Data: data})
	if err != nil {
		return fmt.Errorf("storage: marshal envelope %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Load decodes the snapshot under key into v. Payloads written before the
// envelope existed are decoded as-is. The bool reports whether the key was present.
func Load(ctx context.Context, s Storage, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Version > 0 && env.Data != nil {
			if env.Version > CurrentVersion {
				return true, fmt.Errorf("storage: %s version %d: %w", key, env.Version, ErrUnsupportedVersion)
			}
			if err := json.Unmarshal(env.Data, v); err != nil {
				return true, fmt.Errorf("storage: unmarshal %s: %w", key, err)
			}
			return true, nil
		}
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return true, fmt.Errorf("storage: unmarshal legacy %s: %w", key, err)
	}
	return true, nil
}
