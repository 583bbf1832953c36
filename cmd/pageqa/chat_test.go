package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type mockAsker struct {
	askFn func(ctx context.Context, question string) (string, error)

	questions []string
}

func (m *mockAsker) Ask(ctx context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if m.askFn != nil {
		return m.askFn(ctx, question)
	}
	return "an answer", nil
}

func runLoop(t *testing.T, svc *mockAsker, input string) (string, error) {
	t.Helper()

	var out strings.Builder
	err := chatLoop(context.Background(), svc, strings.NewReader(input), &out, zap.NewNop())
	return out.String(), err
}

func TestChatLoop_ExitTerminates(t *testing.T) {
	svc := &mockAsker{}

	if _, err := runLoop(t, svc, "exit\n"); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if len(svc.questions) != 0 {
		t.Fatalf("expected no questions asked, got %v", svc.questions)
	}
}

func TestChatLoop_ExitIsCaseInsensitive(t *testing.T) {
	for _, line := range []string{"EXIT", "Exit", "eXiT"} {
		svc := &mockAsker{}

		if _, err := runLoop(t, svc, line+"\n"); err != nil {
			t.Fatalf("chatLoop(%q): %v", line, err)
		}
		if len(svc.questions) != 0 {
			t.Fatalf("%q should terminate without asking, got %v", line, svc.questions)
		}
	}
}

func TestChatLoop_AnswersQuestion(t *testing.T) {
	svc := &mockAsker{
		askFn: func(_ context.Context, _ string) (string, error) {
			return "Paris", nil
		},
	}

	out, err := runLoop(t, svc, "capital of France?\nexit\n")
	if err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if len(svc.questions) != 1 || svc.questions[0] != "capital of France?" {
		t.Fatalf("unexpected questions: %v", svc.questions)
	}
	if !strings.Contains(out, "Paris") {
		t.Fatalf("answer missing from output:\n%s", out)
	}
}

func TestChatLoop_ErrorPrintsAndContinues(t *testing.T) {
	svc := &mockAsker{
		askFn: func(_ context.Context, question string) (string, error) {
			if question == "bad" {
				return "", errors.New("backend down")
			}
			return "fine", nil
		},
	}

	out, err := runLoop(t, svc, "bad\ngood\nexit\n")
	if err != nil {
		t.Fatalf("chatLoop should swallow ask errors, got %v", err)
	}
	if !strings.Contains(out, "Error: backend down") {
		t.Fatalf("error not printed:\n%s", out)
	}
	if !strings.Contains(out, "fine") {
		t.Fatalf("loop did not continue past the error:\n%s", out)
	}
	if len(svc.questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", svc.questions)
	}
}

func TestChatLoop_EOFTerminates(t *testing.T) {
	svc := &mockAsker{}

	out, err := runLoop(t, svc, "")
	if err != nil {
		t.Fatalf("EOF should terminate cleanly, got %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected trailing newline after EOF, got %q", out)
	}
}

func TestChatLoop_SkipsBlankLines(t *testing.T) {
	svc := &mockAsker{}

	if _, err := runLoop(t, svc, "\n   \nexit\n"); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if len(svc.questions) != 0 {
		t.Fatalf("blank lines should not be asked, got %v", svc.questions)
	}
}
