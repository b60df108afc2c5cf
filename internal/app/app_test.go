package app

import (
	"testing"

	"github.com/dropDatabas3/naiad/internal/config"
	"github.com/dropDatabas3/naiad/internal/orm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(`
secret_key: test-secret
database:
  name: naiad_test
  dsn_template: "postgres://naiad@localhost/{database}"
routes:
  - endpoint: sale.order.search
    pattern: /orders
    methods: [GET]
`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

func TestNewAssemblesApplication(t *testing.T) {
	reg := orm.NewRegistry()
	if err := reg.Register(orm.NewModel("sale.order")); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.Freeze()

	a, err := New(testConfig(t), reg, nil)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if a.Handler() == nil {
		t.Fatal("handler not built")
	}
	if a.Pipeline == nil {
		t.Fatal("pipeline not built")
	}
	// Los pools se crean on-demand: armar la app no toca la base.
	if n := a.Manager.PoolCount(); n != 0 {
		t.Fatalf("expected no pools yet, got %d", n)
	}
}
