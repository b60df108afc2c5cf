package config

import (
	"errors"
	"testing"
)

const minimal = `
secret_key: s3cr3t
database:
  name: shop
`

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("default addr: %q", c.Server.Addr)
	}
	if got := c.Retry(); got != 3 {
		t.Fatalf("default retry budget: %d", got)
	}
	if c.Dispatch.DefaultLocale != "en_US" {
		t.Fatalf("default locale: %q", c.Dispatch.DefaultLocale)
	}
	if c.Cache.Kind != "memory" {
		t.Fatalf("default cache kind: %q", c.Cache.Kind)
	}
}

func TestParse_MissingSecretKey(t *testing.T) {
	_, err := Parse([]byte("database:\n  name: shop\n"))
	if !errors.Is(err, ErrMissingSecretKey) {
		t.Fatalf("expected ErrMissingSecretKey, got %v", err)
	}
}

func TestParse_NegativeRetry(t *testing.T) {
	_, err := Parse([]byte(minimal + "dispatch:\n  retry: -1\n"))
	if err == nil {
		t.Fatal("expected error for negative retry budget")
	}
}

func TestParse_ZeroRetryIsValid(t *testing.T) {
	c, err := Parse([]byte(minimal + "dispatch:\n  retry: 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := c.Retry(); got != 0 {
		t.Fatalf("retry budget: %d, want 0", got)
	}
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv("DISPATCH_RETRY", "5")
	t.Setenv("SECRET_KEY", "env-key")
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := c.Retry(); got != 5 {
		t.Fatalf("retry from env: %d", got)
	}
	if c.SecretKey != "env-key" {
		t.Fatalf("secret key from env: %q", c.SecretKey)
	}
}

func TestParse_Routes(t *testing.T) {
	c, err := Parse([]byte(minimal + `
routes:
  - endpoint: sale.order.confirm
    pattern: /orders/{active_id}/confirm
    methods: [POST]
  - endpoint: home
    pattern: /
    methods: [GET]
    auto_options: true
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Routes) != 2 {
		t.Fatalf("routes: %d", len(c.Routes))
	}
	if c.Routes[0].Endpoint != "sale.order.confirm" || !c.Routes[1].AutoOptions {
		t.Fatalf("routes parsed wrong: %+v", c.Routes)
	}
}
