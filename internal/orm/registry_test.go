package orm

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	m := NewModel("sale.order").Static("search", func(context.Context, Tx, Args) (any, error) { return nil, nil })
	if err := r.Register(m); err != nil {
		t.Fatalf("register: %v", err)
	}
	got, ok := r.Get("sale.order")
	if !ok || got != m {
		t.Fatal("model lookup failed")
	}
	if _, ok := r.Get("res.partner"); ok {
		t.Fatal("unknown model should not resolve")
	}
}

func TestRegistry_DuplicateAndFrozen(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewModel("a")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(NewModel("a")); err == nil {
		t.Fatal("duplicate register must fail")
	}
	r.Freeze()
	if err := r.Register(NewModel("b")); !errors.Is(err, ErrFrozen) {
		t.Fatalf("expected ErrFrozen, got %v", err)
	}
}

func TestModel_MethodLookup(t *testing.T) {
	m := NewModel("sale.order").
		Static("search", func(context.Context, Tx, Args) (any, error) { return "s", nil }).
		Instance("confirm", func(context.Context, Tx, *Record, Args) (any, error) { return "i", nil })

	if _, ok := m.StaticMethod("search"); !ok {
		t.Fatal("static method missing")
	}
	if _, ok := m.InstanceMethod("confirm"); !ok {
		t.Fatal("instance method missing")
	}
	if _, ok := m.StaticMethod("confirm"); ok {
		t.Fatal("confirm is not static")
	}
}

func TestModel_Record(t *testing.T) {
	m := NewModel("sale.order")
	rec := m.Record(nil, 42)
	if rec.ID() != 42 || rec.ModelName() != "sale.order" {
		t.Fatalf("record: id=%d model=%s", rec.ID(), rec.ModelName())
	}
}

func TestAsID(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{42, 42, true},
		{int64(7), 7, true},
		{float64(9), 9, true},
		{"15", 15, true},
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, err := AsID(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("AsID(%v) = %d, %v", c.in, got, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("AsID(%v) should fail", c.in)
		}
	}
}
