package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid manifest").
			WithSeverity(SeverityFatal).
			WithContext("file", "ssio.toml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid manifest" {
			t.Errorf("expected message 'invalid manifest', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "ssio.toml" {
			t.Errorf("expected context file=ssio.toml, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		classified, ok := AsClassified(err)
		if !ok {
			t.Fatal("expected error to be classified")
		}
		if !classified.IsCategory(CategoryConfig) || !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := InvariantError("output escapes output_dir").Build()
		outer := fmt.Errorf("page a.html: %w", inner)

		if !IsFatal(outer) {
			t.Error("expected wrapped invariant error to be fatal")
		}
		classified, ok := AsClassified(outer)
		if !ok || classified.Category() != CategoryInvariant {
			t.Errorf("expected invariant category, got %v", classified)
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to map to internal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := WrapError(originalErr, CategoryFileSystem, "write page").
		WithSeverity(SeverityWarning).
		WithContext("output", "out/index.html").
		WithContext("page", "index.html").
		Build()

	if err.Severity() != SeverityWarning {
		t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected error to wrap original error")
	}
	if page, _ := err.Context().GetString("page"); page != "index.html" {
		t.Errorf("expected page context, got %q", page)
	}
	want := "[filesystem:warning] write page: permission denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	base := BuildError("page failed").WithContext("page", "a.html").Build()
	derived := base.WithContext("output", "out/a.html")

	if _, ok := base.Context().Get("output"); ok {
		t.Error("expected original context to stay unchanged")
	}
	if out, _ := derived.Context().GetString("output"); out != "out/a.html" {
		t.Errorf("expected derived context to carry output, got %q", out)
	}
}
