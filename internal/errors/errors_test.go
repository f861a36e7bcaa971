package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "disposed access",
			code:    "E001",
			wantMsg: "Disposed view model accessed",
			wantCat: CategoryRuntime,
		},
		{
			name:    "declaration error",
			code:    "E050",
			wantMsg: "Invalid dependency declaration",
			wantCat: CategoryDeclaration,
		},
		{
			name:    "config error",
			code:    "E120",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryRuntime, "node %q not found", "root")
	if err.Message != `node "root" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `node "root" not found`)
	}
	if err.Category != CategoryRuntime {
		t.Errorf("Category = %q, want %q", err.Category, CategoryRuntime)
	}
}

func TestError_Error(t *testing.T) {
	err := New("E002")
	if got, want := err.Error(), "E002: Duplicate extra connection"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.WithDetail("source *demo.Settings")
	if got, want := err.Error(), "E002: Duplicate extra connection (source *demo.Settings)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := &Error{Message: "test error"}
	if plain.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", plain.Error(), "test error")
	}
}

func TestError_WrapAndIs(t *testing.T) {
	sentinel := stderrors.New("sentinel")
	err := New("E001").WithDetailf("op %s", "notify").Wrap(sentinel)

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should find the wrapped sentinel")
	}
	if !stderrors.Is(err, New("E001")) {
		t.Error("errors.Is should match errors with the same code")
	}
	if stderrors.Is(err, New("E002")) {
		t.Error("errors.Is should not match a different code")
	}
	if err.Detail != "op notify" {
		t.Errorf("Detail = %q, want %q", err.Detail, "op notify")
	}

	outer := fmt.Errorf("outer: %w", err)
	if Code(outer) != "E001" {
		t.Errorf("Code() = %q, want E001", Code(outer))
	}
	if Code(sentinel) != "" {
		t.Errorf("Code() of plain error = %q, want empty", Code(sentinel))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	e := New("E001")
	if FromError(e, "E002") != e {
		t.Error("FromError should return *Error as-is")
	}

	std := stderrors.New("boom")
	result := FromError(std, "E120")
	if result.Wrapped != std {
		t.Error("standard error should be wrapped")
	}
	if result.Code != "E120" {
		t.Errorf("Code = %q, want E120", result.Code)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E001").
		WithDetail("RegisterChild on disposed *demo.ParentVM").
		Wrap(stderrors.New("viewmodel: disposed"))

	out := err.Format()
	for _, want := range []string{
		"ERROR E001: Disposed view model accessed",
		"RegisterChild on disposed *demo.ParentVM",
		"Cause: viewmodel: disposed",
		"Hint: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E122").WithDetail("diagnostics.addr is empty")
	if got, want := err.FormatCompact(), "E122: Invalid configuration value - diagnostics.addr is empty"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("wrapped: %w", New("E200")))
	if !strings.Contains(buf.String(), "ERROR E200: Snapshot export not configured") {
		t.Errorf("Fprint() = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
}

func TestRegisteredCodesHaveCategories(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok {
			t.Fatalf("GetTemplate(%q) missing", code)
		}
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("code %s has incomplete template: %+v", code, tmpl)
		}
	}
}
