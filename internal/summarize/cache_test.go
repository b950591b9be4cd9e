package summarize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yashikota/maildigest/internal/vision"
	"github.com/yashikota/maildigest/internal/vision/mock"
)

func TestAssistantCache_GetOrCreate(t *testing.T) {
	t.Parallel()

	profile, err := ProfileFor("pdf_summarizer")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("creates on first use and reuses across cache instances", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		service := &mock.AssistantService{}

		cache := NewAssistantCache(dir, service, discardLogger())
		id, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o")
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if id != "asst-mock" {
			t.Errorf("assistant ID = %q, want asst-mock", id)
		}
		if service.CreateAssistantCalls != 1 {
			t.Errorf("CreateAssistant calls = %d, want 1", service.CreateAssistantCalls)
		}

		// A fresh cache instance reads the persisted file and validates
		// instead of recreating.
		cache2 := NewAssistantCache(dir, service, discardLogger())
		id2, err := cache2.GetOrCreate(context.Background(), profile, "gpt-4o")
		if err != nil {
			t.Fatalf("GetOrCreate() second instance error = %v", err)
		}
		if id2 != id {
			t.Errorf("second instance ID = %q, want %q", id2, id)
		}
		if service.CreateAssistantCalls != 1 {
			t.Errorf("CreateAssistant calls after reuse = %d, want 1", service.CreateAssistantCalls)
		}
		if service.RetrieveAssistantCalls == 0 {
			t.Error("cached assistant was never validated remotely")
		}
	})

	t.Run("stale remote assistant is recreated", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		service := &mock.AssistantService{}

		cache := NewAssistantCache(dir, service, discardLogger())
		if _, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o"); err != nil {
			t.Fatal(err)
		}

		service.RetrieveAssistantFunc = func(context.Context, string) error {
			return errors.New("404 not found")
		}
		created := 0
		service.CreateAssistantFunc = func(context.Context, vision.AssistantConfig) (string, error) {
			created++
			return "asst-fresh", nil
		}

		cache2 := NewAssistantCache(dir, service, discardLogger())
		id, err := cache2.GetOrCreate(context.Background(), profile, "gpt-4o")
		if err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if id != "asst-fresh" || created != 1 {
			t.Errorf("id = %q created = %d, want asst-fresh created once", id, created)
		}
	})

	t.Run("model change invalidates the cached entry", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		service := &mock.AssistantService{}

		cache := NewAssistantCache(dir, service, discardLogger())
		if _, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o"); err != nil {
			t.Fatal(err)
		}
		if _, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o-mini"); err != nil {
			t.Fatal(err)
		}

		if service.CreateAssistantCalls != 2 {
			t.Errorf("CreateAssistant calls = %d, want 2 (one per model)", service.CreateAssistantCalls)
		}
	})

	t.Run("corrupt cache file starts empty instead of failing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}

		service := &mock.AssistantService{}
		cache := NewAssistantCache(dir, service, discardLogger())

		if _, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o"); err != nil {
			t.Fatalf("GetOrCreate() error = %v", err)
		}
		if service.CreateAssistantCalls != 1 {
			t.Errorf("CreateAssistant calls = %d, want 1", service.CreateAssistantCalls)
		}
	})

	t.Run("create failure propagates", func(t *testing.T) {
		t.Parallel()

		service := &mock.AssistantService{
			CreateAssistantFunc: func(context.Context, vision.AssistantConfig) (string, error) {
				return "", errors.New("quota exceeded")
			},
		}

		cache := NewAssistantCache(t.TempDir(), service, discardLogger())
		if _, err := cache.GetOrCreate(context.Background(), profile, "gpt-4o"); err == nil {
			t.Error("GetOrCreate() error = nil, want error")
		}
	})
}
