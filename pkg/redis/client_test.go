package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if val, ok := m.data[key]; ok {
		return redis.NewStringResult(val, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestGetTranslatesMissToCacheMiss(t *testing.T) {
	client := &Client{store: newMockCmdable()}

	_, err := client.Get(context.Background(), "missing")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestSetGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := client.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "v" {
		t.Fatalf("got %q, want v", val)
	}

	if err := client.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var client *Client

	if _, err := client.Get(context.Background(), "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("nil client get should miss, got %v", err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("nil client ping should fail")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}

func TestPatientDetailsKey(t *testing.T) {
	client := &Client{}
	if got := client.PatientDetailsKey("42"); got != "medicart:patient_details:42" {
		t.Fatalf("unexpected key %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address is set")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://localhost:6379/2",
		PoolSize: 5,
	})
	if err != nil {
		t.Fatalf("options from url: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 5 {
		t.Fatalf("unexpected options: %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "10.0.0.1:6379", DB: 1})
	if err != nil {
		t.Fatalf("options from address: %v", err)
	}
	if opts.Addr != "10.0.0.1:6379" || opts.DB != 1 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
