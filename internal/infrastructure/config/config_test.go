package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.HTTPAddress() != ":8080" {
		t.Errorf("unexpected port: %q", cfg.Port)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver by default, got %q", cfg.Store.Driver)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("expected 24h ttl, got %s", cfg.JWTTTL)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis should be disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.Audit.Workers != 4 {
		t.Errorf("expected 4 audit workers, got %d", cfg.Audit.Workers)
	}
	if !cfg.IsDevelopment() {
		t.Errorf("expected development env by default")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"STORE_DRIVER": "postgres",
	}))
	if err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"STORE_DRIVER": "cassandra",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "secret",
		"STORE_DRIVER":   "mongo",
		"MONGO_URI":      "mongodb://db:27017",
		"REDIS_ADDR":     "redis:6379",
		"JWT_TTL":        "90m",
		"ADMIN_USERNAME": "root",
		"ENV":            "production",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Mongo.URI != "mongodb://db:27017" || cfg.Redis.Addr != "redis:6379" {
		t.Errorf("unexpected store config: %+v %+v", cfg.Store, cfg.Redis)
	}
	if cfg.JWTTTL != 90*time.Minute || cfg.Bootstrap.AdminUsername != "root" || cfg.IsDevelopment() {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}
