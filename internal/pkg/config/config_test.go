package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	var cfg Config
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(env),
	})
	if err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

func TestDefaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != DriverMongo {
		t.Fatalf("unexpected defaults: port=%s driver=%s", cfg.Port, cfg.StoreDriver)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("expected 30m token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.Mongo.Database != "theatre_db" || cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected nested defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if cfg.Events.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Events.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"memory driver", map[string]string{"STORE_DRIVER": "memory"}, false},
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}, true},
		{"production needs secret", map[string]string{"ENV": "production"}, true},
		{"production with secret", map[string]string{"ENV": "production", "JWT_SECRET": "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
