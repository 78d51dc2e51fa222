package conversations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/conversations"
	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
)

func ptr[T any](v T) *T { return &v }

func twoFieldTemplate() *templates.Template {
	return &templates.Template{
		ID:         uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		TemplateID: "tpl_notice_v1",
		Title:      "Notice",
		BodyMD:     "To {{a}}.{{b}}",
		Variables: []variables.Variable{
			{Key: "a", Label: "Recipient", Required: true, DType: variables.String},
			{Key: "b", Label: "Postscript", DType: variables.String},
		},
	}
}

func selected(t *testing.T) *conversations.Session {
	t.Helper()
	s := conversations.NewSession(time.Now())
	if err := s.Select(twoFieldTemplate()); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	return s
}

func ready(t *testing.T) *conversations.Session {
	t.Helper()
	s := selected(t)
	s.Answer("a", ptr("Jane"))
	s.Answer("b", ptr(""))
	if s.State != conversations.ReadyToGenerate {
		t.Fatalf("state = %s, want ready_to_generate", s.State)
	}
	return s
}

func TestSessionClaim(t *testing.T) {
	t.Run("claim blocks writers", func(t *testing.T) {
		s := ready(t)
		if _, err := s.Claim(time.Now()); err != nil {
			t.Fatalf("Claim() error = %v", err)
		}

		if _, err := s.Claim(time.Now()); !errors.Is(err, conversations.ErrGenerating) {
			t.Errorf("second Claim() err = %v, want ErrGenerating", err)
		}
		if _, err := s.Answer("a", ptr("John")); !errors.Is(err, conversations.ErrGenerating) {
			t.Errorf("Answer() err = %v, want ErrGenerating", err)
		}
		if err := s.Reset(); !errors.Is(err, conversations.ErrGenerating) {
			t.Errorf("Reset() err = %v, want ErrGenerating", err)
		}
		if s.Answers["a"].Result.Value != "Jane" {
			t.Errorf("answer changed during claim: %+v", s.Answers["a"])
		}
	})

	t.Run("claim requires ready", func(t *testing.T) {
		s := selected(t)
		if _, err := s.Claim(time.Now()); !errors.Is(err, conversations.ErrNotReady) {
			t.Errorf("err = %v, want ErrNotReady", err)
		}
	})

	t.Run("complete without claim", func(t *testing.T) {
		s := ready(t)
		if err := s.Complete(&drafts.Draft{ID: uuid.New()}, s.Revision); !errors.Is(err, conversations.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
		if s.State != conversations.ReadyToGenerate {
			t.Errorf("state = %s", s.State)
		}
	})

	t.Run("complete after revision moved", func(t *testing.T) {
		s := ready(t)
		s.Claim(time.Now())
		claim := s.Revision
		s.Revision++
		if err := s.Complete(&drafts.Draft{ID: uuid.New()}, claim); !errors.Is(err, conversations.ErrConflict) {
			t.Errorf("err = %v, want ErrConflict", err)
		}
	})

	t.Run("release keeps answers", func(t *testing.T) {
		s := ready(t)
		s.Claim(time.Now())
		if err := s.Release(s.Revision, "database unavailable"); err != nil {
			t.Fatalf("Release() error = %v", err)
		}
		if s.Generating != nil || s.State != conversations.CollectingAnswers {
			t.Errorf("session after release = %+v", s)
		}
		if _, err := s.Answer("a", ptr("John")); err != nil {
			t.Errorf("Answer() after release err = %v", err)
		}
	})
}

func TestSessionOptionalMustBeConfirmed(t *testing.T) {
	s := selected(t)
	if s.State != conversations.CollectingAnswers {
		t.Fatalf("state = %s", s.State)
	}

	if _, err := s.Answer("a", ptr("Jane")); err != nil {
		t.Fatalf("Answer(a) error = %v", err)
	}
	if s.State != conversations.CollectingAnswers {
		t.Errorf("state after required only = %s, want collecting_answers", s.State)
	}

	if _, err := s.Answer("b", ptr("")); err != nil {
		t.Fatalf("Answer(b) error = %v", err)
	}
	if s.State != conversations.ReadyToGenerate {
		t.Fatalf("state = %s, want ready_to_generate", s.State)
	}

	answers, err := s.Validated()
	if err != nil {
		t.Fatalf("Validated() error = %v", err)
	}
	if diff := cmp.Diff(drafts.Answers{"a": "Jane", "b": ""}, answers); diff != "" {
		t.Errorf("answers mismatch (-want +got):\n%s", diff)
	}

	text, err := drafts.Generate(s.Template, answers)
	if err != nil || text != "To Jane." {
		t.Errorf("Generate() = %q, %v", text, err)
	}
}

func TestSessionReadyRequiresPassingRequired(t *testing.T) {
	s := selected(t)

	res, _ := s.Answer("a", ptr("  "))
	if !errors.Is(res.Err(), variables.ErrMissingRequiredField) {
		t.Errorf("result = %+v", res)
	}
	s.Answer("b", ptr("ps"))

	if s.State == conversations.ReadyToGenerate {
		t.Fatal("ready with failing required answer")
	}
	if _, err := s.Validated(); !errors.Is(err, conversations.ErrNotReady) {
		t.Errorf("Validated() err = %v, want ErrNotReady", err)
	}

	pending := s.Pending()
	if len(pending) != 1 || pending[0].Key != "a" || pending[0].Error == nil {
		t.Errorf("pending = %+v", pending)
	}
}

func TestSessionAnswerInReadyReevaluates(t *testing.T) {
	s := selected(t)
	s.Answer("a", ptr("Jane"))
	s.Answer("b", nil)
	if s.State != conversations.ReadyToGenerate {
		t.Fatalf("state = %s", s.State)
	}

	s.Answer("a", nil)
	if s.State != conversations.CollectingAnswers {
		t.Errorf("state = %s, want collecting_answers", s.State)
	}

	s.Answer("a", ptr("John"))
	if s.State != conversations.ReadyToGenerate {
		t.Errorf("state = %s, want ready_to_generate", s.State)
	}
}

func TestSessionZeroVariableTemplate(t *testing.T) {
	s := conversations.NewSession(time.Now())
	if err := s.Select(&templates.Template{TemplateID: "tpl_static_v1", BodyMD: "Static text."}); err != nil {
		t.Fatal(err)
	}
	if s.State != conversations.ReadyToGenerate {
		t.Errorf("state = %s, want ready_to_generate", s.State)
	}
}

func TestSessionTransitions(t *testing.T) {
	t.Run("answer before selection", func(t *testing.T) {
		s := conversations.NewSession(time.Now())
		if _, err := s.Answer("a", ptr("x")); !errors.Is(err, conversations.ErrNoTemplate) {
			t.Errorf("err = %v, want ErrNoTemplate", err)
		}
	})

	t.Run("unknown variable", func(t *testing.T) {
		s := selected(t)
		if _, err := s.Answer("zzz", ptr("x")); !errors.Is(err, conversations.ErrUnknownVariable) {
			t.Errorf("err = %v, want ErrUnknownVariable", err)
		}
	})

	t.Run("select twice", func(t *testing.T) {
		s := selected(t)
		if err := s.Select(twoFieldTemplate()); !errors.Is(err, conversations.ErrInvalidTransition) {
			t.Errorf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("reset discards answers", func(t *testing.T) {
		s := selected(t)
		s.Answer("a", ptr("Jane"))
		if err := s.Reset(); err != nil {
			t.Fatal(err)
		}
		if s.State != conversations.SelectingTemplate || s.Template != nil || len(s.Answers) != 0 {
			t.Errorf("session after reset = %+v", s)
		}
	})

	t.Run("done is terminal", func(t *testing.T) {
		s := ready(t)
		if _, err := s.Claim(time.Now()); err != nil {
			t.Fatal(err)
		}
		if err := s.Complete(&drafts.Draft{ID: uuid.New()}, s.Revision); err != nil {
			t.Fatal(err)
		}
		if s.State != conversations.Done {
			t.Fatalf("state = %s", s.State)
		}
		if err := s.Reset(); !errors.Is(err, conversations.ErrSessionDone) {
			t.Errorf("Reset() err = %v", err)
		}
		if _, err := s.Answer("a", ptr("x")); !errors.Is(err, conversations.ErrSessionDone) {
			t.Errorf("Answer() err = %v", err)
		}
		if err := s.Select(twoFieldTemplate()); !errors.Is(err, conversations.ErrSessionDone) {
			t.Errorf("Select() err = %v", err)
		}
	})

	t.Run("fail keeps answers", func(t *testing.T) {
		s := selected(t)
		s.Answer("a", ptr("Jane"))
		s.Answer("b", nil)
		s.Fail("storage unavailable")

		if s.State != conversations.CollectingAnswers {
			t.Errorf("state = %s", s.State)
		}
		if s.Failure == nil || *s.Failure != "storage unavailable" {
			t.Errorf("failure = %v", s.Failure)
		}
		if s.Answers["a"].Result.Value != "Jane" {
			t.Errorf("answers lost: %+v", s.Answers)
		}
	})
}

func TestSessionMatched(t *testing.T) {
	t.Run("no candidates stays selecting", func(t *testing.T) {
		s := conversations.NewSession(time.Now())
		if err := s.Matched("bill of sale", nil, nil); err != nil {
			t.Fatal(err)
		}
		if s.State != conversations.SelectingTemplate || s.Candidates == nil || len(s.Candidates) != 0 {
			t.Errorf("session = %+v", s)
		}
		if s.Query == nil || *s.Query != "bill of sale" {
			t.Errorf("query = %v", s.Query)
		}
	})

	t.Run("top candidate selected", func(t *testing.T) {
		s := conversations.NewSession(time.Now())
		tpl := twoFieldTemplate()
		matches := []matching.Match{{ID: tpl.ID, TemplateID: tpl.TemplateID, Confidence: 0.8}}

		if err := s.Matched("notice", matches, tpl); err != nil {
			t.Fatal(err)
		}
		if s.State != conversations.CollectingAnswers || s.Template.TemplateID != "tpl_notice_v1" {
			t.Errorf("session = %+v", s)
		}
		if len(s.Candidates) != 1 {
			t.Errorf("candidates = %v", s.Candidates)
		}
	})
}

func TestSessionQuestions(t *testing.T) {
	s := selected(t)
	s.Answer("a", ptr("Jane"))

	got := s.Questions()
	if len(got) != 1 {
		t.Fatalf("questions = %+v", got)
	}
	if want := "Please provide postscript. Leave blank to skip"; got[0].Prompt != want {
		t.Errorf("prompt = %q, want %q", got[0].Prompt, want)
	}
}
