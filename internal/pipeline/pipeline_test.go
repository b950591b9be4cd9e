package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/yashikota/maildigest/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *model.DocumentJob) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *model.DocumentJob) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order and records them on the job", func(t *testing.T) {
		t.Parallel()

		var order []string
		record := func(name string) *mockStep {
			return &mockStep{
				name: name,
				doFunc: func(context.Context, *model.DocumentJob) error {
					order = append(order, name)
					return nil
				},
			}
		}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(record("extract"), record("caption"), record("summarize"))

		job := model.NewDocumentJob("/tmp/a.pdf", "a.pdf")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		want := []string{"extract", "caption", "summarize"}
		if len(order) != len(want) || len(job.PerformedSteps) != len(want) {
			t.Fatalf("executed %v, performed %v, want %v", order, job.PerformedSteps, want)
		}
		for i := range want {
			if order[i] != want[i] || job.PerformedSteps[i] != want[i] {
				t.Errorf("step %d = %q (performed %q), want %q", i, order[i], job.PerformedSteps[i], want[i])
			}
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "extract",
			doFunc: func(context.Context, *model.DocumentJob) error {
				return errors.New("boom")
			},
		}
		next := &mockStep{name: "caption"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(failing, next)

		job := model.NewDocumentJob("/tmp/a.pdf", "a.pdf")
		if err := p.Execute(context.Background(), job); err == nil {
			t.Fatal("Execute() error = nil, want error")
		}

		if next.callCount != 0 {
			t.Errorf("subsequent step ran %d times, want 0", next.callCount)
		}
		if job.Artifact.Success {
			t.Error("job artifact marked successful after step failure")
		}
		if job.Artifact.Err == "" {
			t.Error("job artifact has no failure reason")
		}
	})

	t.Run("continues past errors when configured", func(t *testing.T) {
		t.Parallel()

		failing := &mockStep{
			name: "extract",
			doFunc: func(context.Context, *model.DocumentJob) error {
				return errors.New("boom")
			},
		}
		next := &mockStep{name: "caption"}

		p := New(WithLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(failing, next)

		job := model.NewDocumentJob("/tmp/a.pdf", "a.pdf")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v, want nil with continueOnError", err)
		}
		if next.callCount != 1 {
			t.Errorf("subsequent step ran %d times, want 1", next.callCount)
		}
	})

	t.Run("cancelled context stops before the next step", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		first := &mockStep{
			name: "extract",
			doFunc: func(context.Context, *model.DocumentJob) error {
				cancel()
				return nil
			},
		}
		next := &mockStep{name: "caption"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(first, next)

		job := model.NewDocumentJob("/tmp/a.pdf", "a.pdf")
		if err := p.Execute(ctx, job); !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if next.callCount != 0 {
			t.Errorf("step after cancellation ran %d times, want 0", next.callCount)
		}
	})
}

func TestPipeline_StepNames(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(discardLogger()))
	p.AddStep(&mockStep{name: "extract"})
	p.AddStep(&mockStep{name: "caption"})

	if got := p.StepCount(); got != 2 {
		t.Errorf("StepCount() = %d, want 2", got)
	}

	names := p.StepNames()
	if len(names) != 2 || names[0] != "extract" || names[1] != "caption" {
		t.Errorf("StepNames() = %v", names)
	}
}
