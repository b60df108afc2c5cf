package tenant

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// fakeRow implementa pgx.Row sobre valores fijos.
type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.vals[i].(int64)
		case *string:
			*p = r.vals[i].(string)
		}
	}
	return nil
}

type fakeQuerier struct {
	lastHost string
	row      fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.lastHost = args[0].(string)
	return q.row
}

func TestGetFromHost(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{vals: []any{
		int64(1), "tienda", "shop.example.com", int64(10), int64(3), "es_AR",
	}}}
	w, err := NewResolver().GetFromHost(context.Background(), q, "Shop.Example.com:8080")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if q.lastHost != "shop.example.com" {
		t.Fatalf("host not canonicalized: %q", q.lastHost)
	}
	if w.ApplicationUserID != 10 || w.CompanyID != 3 || w.Locale != "es_AR" {
		t.Fatalf("website mismatch: %+v", w)
	}
}

func TestGetFromHost_NotFound(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}
	_, err := NewResolver().GetFromHost(context.Background(), q, "nadie.example.com")
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetFromHost_OtherErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	q := &fakeQuerier{row: fakeRow{err: boom}}
	_, err := NewResolver().GetFromHost(context.Background(), q, "shop.example.com")
	if !errors.Is(err, boom) || IsNotFound(err) {
		t.Fatalf("db error must pass through unchanged: %v", err)
	}
}

func TestCanonicalHost(t *testing.T) {
	cases := map[string]string{
		"Shop.Example.com":      "shop.example.com",
		"shop.example.com:8080": "shop.example.com",
		"  HOST.io ":            "host.io",
		"":                      "",
	}
	for in, want := range cases {
		if got := CanonicalHost(in); got != want {
			t.Fatalf("CanonicalHost(%q) = %q, want %q", in, got, want)
		}
	}
}
