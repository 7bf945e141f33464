package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if cfg.Port != "3000" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.JWTSecret != DevJWTSecret || cfg.Auth.JWTExpiresIn != 24*time.Hour || cfg.Auth.BcryptCost != 10 {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Admission.Store != "memory" {
		t.Fatalf("expected memory store, got %q", cfg.Admission.Store)
	}
	if len(cfg.Admission.BotAllow) != 6 || strings.TrimSpace(cfg.Admission.BotAllow[5]) != "Thunder Client*" {
		t.Fatalf("unexpected bot allow-list: %q", cfg.Admission.BotAllow)
	}
	if cfg.Mongo.Database != "acquisitions" || cfg.Users.EnforceAuthz {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Mongo, cfg.Users)
	}
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := Process(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                "8081",
		"ENV":                 "production",
		"JWT_SECRET":          "prod-secret",
		"JWT_EXPIRES_IN":      "2h",
		"ADMISSION_STORE":     "redis",
		"REDIS_ADDR":          "redis:6379",
		"USERS_ENFORCE_AUTHZ": "true",
		"CORS_ORIGINS":        "https://a.example,https://b.example",
	}))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !cfg.IsProduction() || cfg.Auth.JWTExpiresIn != 2*time.Hour || !cfg.Users.EnforceAuthz {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two origins, got %q", cfg.CORSOrigins)
	}
}

func TestProcess_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"production without secret": {"ENV": "production"},
		"redis store without addr":  {"ADMISSION_STORE": "redis"},
		"unknown store":             {"ADMISSION_STORE": "etcd"},
		"negative workers":          {"HASH_WORKERS": "-1"},
	}
	for name, env := range cases {
		if _, err := Process(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
