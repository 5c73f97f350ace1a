package svchttp

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Response
	}{
		{name: "object", body: `{"bar":"baz","n":1}`, want: Response{"bar": "baz", "n": float64(1)}},
		{name: "empty object", body: `{}`, want: Response{}},
		{name: "array", body: `[1,"two"]`, want: Response{"result": []any{float64(1), "two"}}},
		{name: "plain text", body: "some utterly ugly string right here", want: Response{"result": "some utterly ugly string right here"}},
		{name: "json scalar", body: `"quoted"`, want: Response{"result": `"quoted"`}},
		{name: "json null", body: `null`, want: Response{"result": "null"}},
		{name: "broken json", body: `{"bar":`, want: Response{"result": `{"bar":`}},
		{name: "empty", body: "", want: Response{"result": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize([]byte(tt.body))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("normalize(%q) = %#v, want %#v", tt.body, got, tt.want)
			}
		})
	}
}

func TestResponseResult(t *testing.T) {
	if _, ok := (Response{"bar": "baz"}).Result(); ok {
		t.Fatalf("object response should not report a wrapped result")
	}
	v, ok := (Response{"result": "raw"}).Result()
	if !ok || v != "raw" {
		t.Fatalf("Result() = %v, %v", v, ok)
	}
}

func TestParseMethod(t *testing.T) {
	for name, want := range map[string]Method{"get": MethodGet, " POST ": MethodPost, "Put": MethodPut, "delete": MethodDelete} {
		got, err := ParseMethod(name)
		if err != nil || got != want {
			t.Fatalf("ParseMethod(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseMethod("PATCH"); err == nil {
		t.Fatalf("expected error for unsupported method")
	}
	if MethodDelete.String() != "DELETE" {
		t.Fatalf("String() = %s", MethodDelete.String())
	}
}
