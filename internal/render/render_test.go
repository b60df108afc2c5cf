package render

import (
	"errors"
	"html/template"
	"testing"
)

func TestLazy_ResolveInjectsLanguage(t *testing.T) {
	tmpl := template.Must(template.New("greet").Parse(`hola {{.Name}} [{{.Language}}]`))
	lz := NewLazy(tmpl, map[string]any{"Name": "mundo"})

	out, err := lz.Resolve(Context{Language: "es_AR"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "hola mundo [es_AR]" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLazy_DataShadowsLanguage(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`{{.Language}}`))
	lz := NewLazy(tmpl, map[string]any{"Language": "fixed"})
	out, err := lz.Resolve(Context{Language: "en_US"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if out != "fixed" {
		t.Fatalf("data must win over context language: %q", out)
	}
}

func TestFunc_Resolve(t *testing.T) {
	boom := errors.New("render failed")
	_, err := Func(func(Context) (string, error) { return "", boom }).Resolve(Context{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
}
