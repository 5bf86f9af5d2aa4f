package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Errorf("expected unique IDs, got %s twice", a)
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("Creates Parent Directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		logPath := filepath.Join(tmpDir, "nested", "marquee.log")

		logger, err := NewFileLogger(logPath)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}

		logger.Info("hello")

		if _, err := os.Stat(logPath); err != nil {
			t.Errorf("log file should exist: %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	type form struct {
		Email  string `validate:"required,email"`
		Rating int    `validate:"min=1,max=5"`
	}

	t.Run("Valid Input", func(t *testing.T) {
		if err := Validate(form{Email: "a@b.com", Rating: 3}); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Invalid Input Wraps ErrValidation", func(t *testing.T) {
		err := Validate(form{Email: "not-an-email", Rating: 6})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("ValidateVar", func(t *testing.T) {
		if err := ValidateVar(3, "min=1,max=5"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if err := ValidateVar(0, "min=1,max=5"); err == nil {
			t.Error("expected validation error for 0")
		}
	})
}
