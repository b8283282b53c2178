package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Store != StoreMongo || cfg.Mongo.Database != "helpdesk" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.JWT.Issuer != "helpdesk-api" || cfg.JWT.Audience != "helpdesk-clients" || cfg.JWT.TTL != 2*time.Hour {
		t.Fatalf("unexpected jwt defaults: %+v", cfg.JWT)
	}
	if cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected idempotency ttl: %v", cfg.Redis.IdempotencyTTL)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":               secret,
		"JWT_TTL":                  "15m",
		"STORE":                    "Memory",
		"ENV":                      "production",
		"BOOTSTRAP_ADMIN_USERNAME": "root",
		"BOOTSTRAP_ADMIN_PASSWORD": "changeme",
		"REDIS_PASSWORD":           "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.TTL != 15*time.Minute || cfg.Store != StoreMemory || cfg.IsDevelopment() {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Bootstrap.AdminUsername != "root" {
		t.Fatalf("bootstrap not loaded: %+v", cfg.Bootstrap)
	}
	if cfg.Redis.Password != "s3cret" {
		t.Fatalf("redis password not loaded")
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"short secret", map[string]string{"JWT_SECRET": "short"}, "JWT_SECRET"},
		{"bad store", map[string]string{"JWT_SECRET": secret, "STORE": "postgres"}, "STORE"},
		{"half bootstrap", map[string]string{"JWT_SECRET": secret, "BOOTSTRAP_ADMIN_USERNAME": "root"}, "BOOTSTRAP_ADMIN"},
		{"bad ttl", map[string]string{"JWT_SECRET": secret, "JWT_TTL": "soon"}, "config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
