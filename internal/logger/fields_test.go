package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  openai  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "openai" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	enriched := WithCommonFields(zap.New(core), "openai", "gpt-4o")
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "openai" {
		t.Fatalf("expected provider field to be openai, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gpt-4o" {
		t.Fatalf("expected model field to be gpt-4o, got %q", ctx[FieldModel])
	}

	if fallback := WithCommonFields(nil, "openai", "gpt-4o"); fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}

func TestWithUserSkipsEmpty(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithUser(zap.New(core), " ").Info("anonymous")
	WithUser(zap.New(core), "u-1").Info("known")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()[FieldUserID]; ok {
		t.Fatalf("did not expect user field for blank id")
	}
	if entries[1].ContextMap()[FieldUserID] != "u-1" {
		t.Fatalf("unexpected user field: %v", entries[1].ContextMap())
	}
}

func TestComponentNilLogger(t *testing.T) {
	if Component(nil, "store") == nil {
		t.Fatal("expected no-op logger")
	}
}
