package cli

import (
	"reflect"
	"testing"

	"github.com/cybertec-postgresql/dbal/internal/params"
)

func TestBuildParams_Positional(t *testing.T) {
	p, typs, err := BuildParams([]string{"1", "a,b", "x"}, []string{"integer", "string[]"})
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	if p.IsNamed() {
		t.Fatal("expected positional parameters")
	}
	want := []any{"1", []string{"a", "b"}, "x"}
	if !reflect.DeepEqual(p.Positional, want) {
		t.Errorf("got %#v, want %#v", p.Positional, want)
	}
	if !reflect.DeepEqual(typs.Positional, []params.ParameterType{params.Integer, params.StringArray}) {
		t.Errorf("unexpected types %v", typs.Positional)
	}
}

func TestBuildParams_Named(t *testing.T) {
	p, typs, err := BuildParams([]string{"id=7", ":tags=", "note=a=b"}, []string{"id=integer", ":tags=string[]"})
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	want := map[string]any{"id": "7", "tags": []string{}, "note": "a=b"}
	if !reflect.DeepEqual(p.Named, want) {
		t.Errorf("got %#v, want %#v", p.Named, want)
	}
	if typs.Named["id"] != params.Integer || typs.Named["tags"] != params.StringArray {
		t.Errorf("unexpected types %v", typs.Named)
	}
}

func TestBuildParams_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		types  []string
	}{
		{"mixed styles", []string{"a=1", "2"}, nil},
		{"unknown positional type", []string{"1"}, []string{"decimal"}},
		{"named type without name", []string{"a=1"}, []string{"integer"}},
		{"unknown named type", []string{"a=1"}, []string{"a=money"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := BuildParams(tt.values, tt.types); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildParams_ValueWithEqualsIsPositional(t *testing.T) {
	p, _, err := BuildParams([]string{"a b=c"}, nil)
	if err != nil {
		t.Fatalf("BuildParams failed: %v", err)
	}
	if p.IsNamed() || len(p.Positional) != 1 || p.Positional[0] != "a b=c" {
		t.Errorf("unexpected params %#v", p)
	}
}
