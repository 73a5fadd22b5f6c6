package repository

import "context"

type SettingRepository interface {
	// Get returns the stored value, or ("", nil) when the key is unset.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
