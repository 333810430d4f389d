package cache

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
)

func newTestConfig(url string) *config.Config {
	return &config.Config{RedisURL: url}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), newTestConfig("not-a-valid-url"), logger.Nop())
	if err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}
}

func TestNewRedisClient_UnreachableHost(t *testing.T) {
	_, err := NewRedisClient(context.Background(), newTestConfig("redis://localhost:19999"), logger.Nop())
	if err == nil {
		t.Fatal("expected error when Redis is unreachable, got nil")
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		url      string
		wantPool int
		wantDB   int
	}{
		{"redis://localhost:6379", 10, 0},
		{"redis://localhost:6379/2?pool_size=25", 25, 2},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			opts, err := clientOptions(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if opts.PoolSize != tt.wantPool || opts.DB != tt.wantDB {
				t.Errorf("pool=%d db=%d, want pool=%d db=%d", opts.PoolSize, opts.DB, tt.wantPool, tt.wantDB)
			}
			if opts.ReadTimeout != 3*time.Second {
				t.Errorf("read timeout = %v", opts.ReadTimeout)
			}
		})
	}
}

func TestSlowLogHook(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&config.Config{LogLevel: "info"}, &buf)
	hook := slowLogHook{log: log, threshold: 5 * time.Millisecond}

	fast := hook.ProcessHook(func(context.Context, redis.Cmder) error { return nil })
	_ = fast(context.Background(), redis.NewStatusCmd(context.Background(), "ping"))
	if buf.Len() != 0 {
		t.Fatalf("fast command logged: %s", buf.String())
	}

	slow := hook.ProcessHook(func(context.Context, redis.Cmder) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})
	_ = slow(context.Background(), redis.NewStringCmd(context.Background(), "get", "inventory:session:secret"))
	out := buf.String()
	if !strings.Contains(out, "slow redis command") || !strings.Contains(out, `"command":"get"`) {
		t.Fatalf("expected slow command log, got %s", out)
	}
	if strings.Contains(out, "secret") {
		t.Fatal("command arguments must not be logged")
	}
}

func TestItemCache_KeyIsTenantScoped(t *testing.T) {
	c := &ItemCache{}
	tenantA, tenantB, itemID := uuid.New(), uuid.New(), uuid.New()

	if c.key(tenantA, itemID) == c.key(tenantB, itemID) {
		t.Fatal("same item id under different tenants must map to different keys")
	}
	want := "inventory:item:" + tenantA.String() + ":" + itemID.String()
	if got := c.key(tenantA, itemID); got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}
}

// Integration tests, skipped unless REDIS_URL is set.
func TestRedisIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	ctx := context.Background()
	rc, err := NewRedisClient(ctx, newTestConfig(redisURL), logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	t.Run("Ping_Success", func(t *testing.T) {
		if err := rc.Ping(ctx); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("ItemCache_FillGetInvalidate", func(t *testing.T) {
		c := NewItemCache(rc)
		item := &CachedItem{
			ID:        uuid.New(),
			TenantID:  uuid.New(),
			Name:      "Widget",
			Quantity:  4,
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}

		if _, err := c.Get(ctx, item.TenantID, item.ID); !IsMiss(err) {
			t.Fatalf("expected miss before Fill, got %v", err)
		}
		version, err := c.Version(ctx, item.TenantID, item.ID)
		if err != nil {
			t.Fatalf("version: %v", err)
		}
		if ok, err := c.Fill(ctx, item, version); err != nil || !ok {
			t.Fatalf("fill: stored=%v err=%v", ok, err)
		}

		got, err := c.Get(ctx, item.TenantID, item.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != item.Name || got.Quantity != item.Quantity || !got.CreatedAt.Equal(item.CreatedAt) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, item)
		}

		if _, err := c.Get(ctx, uuid.New(), item.ID); !IsMiss(err) {
			t.Fatalf("expected miss for another tenant, got %v", err)
		}

		if err := c.Invalidate(ctx, item.TenantID, item.ID); err != nil {
			t.Fatalf("invalidate: %v", err)
		}
		if _, err := c.Get(ctx, item.TenantID, item.ID); !IsMiss(err) {
			t.Fatalf("expected miss after Invalidate, got %v", err)
		}

		// A fill holding the version from before Invalidate must not land.
		if ok, err := c.Fill(ctx, item, version); err != nil || ok {
			t.Fatalf("stale fill: stored=%v err=%v", ok, err)
		}
		if _, err := c.Get(ctx, item.TenantID, item.ID); !IsMiss(err) {
			t.Fatalf("expected miss after stale fill, got %v", err)
		}
	})
}
