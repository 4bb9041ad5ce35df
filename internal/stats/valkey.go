package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"
)

// ValkeyConfig holds connection settings for the valkey backend.
type ValkeyConfig struct {
	Addr     string
	Password string
	// DisableCache turns off client-side caching; required for miniredis.
	DisableCache bool
}

// NewValkeyClient dials a Valkey/Redis server.
func NewValkeyClient(cfg ValkeyConfig) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		Password:     cfg.Password,
		DisableCache: cfg.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}
	return client, nil
}

// ValkeyKV stores each record as a plain string key.
type ValkeyKV struct {
	client valkey.Client
	prefix string
}

// NewValkeyKV prefixes every key with prefix + ":" when prefix is set.
func NewValkeyKV(client valkey.Client, prefix string) *ValkeyKV {
	return &ValkeyKV{client: client, prefix: prefix}
}

func (v *ValkeyKV) key(k string) string {
	if v.prefix == "" {
		return k
	}
	return v.prefix + ":" + k
}

func (v *ValkeyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := v.client.B().Get().Key(v.key(key)).Build()
	b, err := v.client.Do(ctx, cmd).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, true, nil
}

func (v *ValkeyKV) Put(ctx context.Context, key string, value []byte) error {
	cmd := v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(value)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}
