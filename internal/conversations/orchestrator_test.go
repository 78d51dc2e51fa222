package conversations_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/conversations"
	"github.com/JaimeStill/scrivener/internal/drafts"
	"github.com/JaimeStill/scrivener/internal/matching"
	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
	"github.com/JaimeStill/scrivener/pkg/cache"
)

type fakeCatalog struct {
	templates []templates.Template
}

func (c *fakeCatalog) Catalog(context.Context) ([]templates.Template, error) {
	return c.templates, nil
}

func (c *fakeCatalog) Find(_ context.Context, id uuid.UUID) (*templates.Template, error) {
	for i := range c.templates {
		if c.templates[i].ID == id {
			return &c.templates[i], nil
		}
	}
	return nil, templates.ErrNotFound
}

func (c *fakeCatalog) FindByTemplateID(_ context.Context, tid string) (*templates.Template, error) {
	for i := range c.templates {
		if c.templates[i].TemplateID == tid {
			return &c.templates[i], nil
		}
	}
	return nil, templates.ErrNotFound
}

type fakeRecorder struct {
	recorded []drafts.RecordCommand
	err      error
	during   func()
}

func (r *fakeRecorder) Record(_ context.Context, cmd drafts.RecordCommand) (*drafts.Draft, error) {
	if r.during != nil {
		r.during()
	}
	if r.err != nil {
		return nil, r.err
	}
	r.recorded = append(r.recorded, cmd)
	tid := cmd.TemplateUUID
	return &drafts.Draft{
		ID:           uuid.New(),
		TemplateUUID: &tid,
		TemplateID:   cmd.TemplateID,
		Title:        cmd.Title,
		UserQuery:    cmd.UserQuery,
		Answers:      cmd.Answers,
		DraftMD:      cmd.DraftMD,
		CreatedAt:    time.Now(),
	}, nil
}

func claimTemplate() templates.Template {
	return templates.Template{
		ID:              uuid.MustParse("6f1c2a7e-5b0d-4c55-9a43-0e8d7f6b1a22"),
		TemplateID:      "tpl_insurance_claim_letter_v1",
		Title:           "Insurance Claim Letter",
		DocType:         "claim_letter",
		SimilarityTags:  []string{"insurance claim"},
		FileDescription: "Letter to an insurer supporting a policy claim.",
		BodyMD:          "Dear {{claimant_full_name}}, re policy {{policy_number}}.",
		Variables: []variables.Variable{
			{Key: "claimant_full_name", Label: "Claimant full name", Required: true, DType: variables.String},
			{Key: "policy_number", Label: "Policy number", Required: true, DType: variables.Number},
		},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

type fixture struct {
	sys      conversations.System
	catalog  *fakeCatalog
	recorder *fakeRecorder
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := &fakeCatalog{templates: []templates.Template{claimTemplate()}}
	recorder := &fakeRecorder{}
	matcher := matching.NewSystem(catalog, matching.New(0.15, 5), logger)

	return &fixture{
		sys:      conversations.New(cache.NewMemory(nil, logger), time.Hour, catalog, matcher, recorder, logger),
		catalog:  catalog,
		recorder: recorder,
	}
}

func TestOrchestratorFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.sys.Start(ctx)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	s, err = f.sys.Query(ctx, s.ID, "insurance claim letter")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if s.State != conversations.CollectingAnswers || s.Template == nil {
		t.Fatalf("session after query = %+v", s)
	}
	if len(s.Candidates) != 1 || s.Candidates[0].TemplateID != "tpl_insurance_claim_letter_v1" {
		t.Errorf("candidates = %+v", s.Candidates)
	}

	if _, err := f.sys.Generate(ctx, s.ID); !errors.Is(err, conversations.ErrNotReady) {
		t.Errorf("Generate() before answers err = %v, want ErrNotReady", err)
	}

	res, s, err := f.sys.Answer(ctx, s.ID, "policy_number", ptr("abc"))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !errors.Is(res.Err(), variables.ErrTypeMismatch) {
		t.Errorf("result = %+v, want type mismatch", res)
	}

	f.sys.Answer(ctx, s.ID, "policy_number", ptr(" 302786965 "))
	_, s, _ = f.sys.Answer(ctx, s.ID, "claimant_full_name", ptr("Rajesh Kumar"))
	if s.State != conversations.ReadyToGenerate {
		t.Fatalf("state = %s, want ready_to_generate", s.State)
	}

	s, err = f.sys.Generate(ctx, s.ID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if s.State != conversations.Done || s.Draft == nil {
		t.Fatalf("session after generate = %+v", s)
	}
	if want := "Dear Rajesh Kumar, re policy 302786965."; s.Draft.DraftMD != want {
		t.Errorf("draft = %q, want %q", s.Draft.DraftMD, want)
	}

	if len(f.recorder.recorded) != 1 {
		t.Fatalf("recorded = %d", len(f.recorder.recorded))
	}
	cmd := f.recorder.recorded[0]
	if cmd.UserQuery == nil || *cmd.UserQuery != "insurance claim letter" || cmd.TemplateID != "tpl_insurance_claim_letter_v1" {
		t.Errorf("record command = %+v", cmd)
	}

	if _, err := f.sys.Reset(ctx, s.ID); !errors.Is(err, conversations.ErrSessionDone) {
		t.Errorf("Reset() after done err = %v", err)
	}

	stored, err := f.sys.Find(ctx, s.ID)
	if err != nil || stored.State != conversations.Done {
		t.Errorf("stored = %+v, %v", stored, err)
	}
}

func TestOrchestratorQueryWithoutMatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s, _ := f.sys.Start(ctx)

	s, err := f.sys.Query(ctx, s.ID, "vehicle bill of sale")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if s.State != conversations.SelectingTemplate || len(s.Candidates) != 0 {
		t.Errorf("session = %+v", s)
	}

	s, err = f.sys.Select(ctx, s.ID, "tpl_insurance_claim_letter_v1")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if s.State != conversations.CollectingAnswers {
		t.Errorf("state = %s", s.State)
	}

	if _, err := f.sys.Select(ctx, s.ID, "tpl_other_v1"); !errors.Is(err, conversations.ErrInvalidRequest) {
		t.Errorf("Select(unknown) err = %v", err)
	}
}

func TestOrchestratorRecordFailureKeepsAnswers(t *testing.T) {
	f := newFixture()
	f.recorder.err = errors.New("database unavailable")
	ctx := context.Background()

	s, _ := f.sys.Start(ctx)
	s, _ = f.sys.Select(ctx, s.ID, claimTemplate().ID.String())
	f.sys.Answer(ctx, s.ID, "claimant_full_name", ptr("Rajesh Kumar"))
	f.sys.Answer(ctx, s.ID, "policy_number", ptr("1"))

	s, err := f.sys.Generate(ctx, s.ID)
	if err == nil {
		t.Fatal("Generate() succeeded with failing recorder")
	}
	if s == nil || s.State != conversations.CollectingAnswers || s.Generating != nil {
		t.Fatalf("session = %+v", s)
	}
	if s.Failure == nil {
		t.Error("failure not attached")
	}
	if s.Answers["claimant_full_name"].Result.Value != "Rajesh Kumar" {
		t.Errorf("answers lost: %+v", s.Answers)
	}
}

func TestOrchestratorGenerateHoldsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, _ := f.sys.Start(ctx)
	s, _ = f.sys.Select(ctx, s.ID, "tpl_insurance_claim_letter_v1")
	f.sys.Answer(ctx, s.ID, "claimant_full_name", ptr("Rajesh Kumar"))
	f.sys.Answer(ctx, s.ID, "policy_number", ptr("302786965"))

	var answerErr, generateErr, resetErr error
	f.recorder.during = func() {
		f.recorder.during = nil
		_, _, answerErr = f.sys.Answer(ctx, s.ID, "policy_number", ptr("not-a-number"))
		_, generateErr = f.sys.Generate(ctx, s.ID)
		_, resetErr = f.sys.Reset(ctx, s.ID)
	}

	s, err := f.sys.Generate(ctx, s.ID)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for name, err := range map[string]error{"Answer": answerErr, "Generate": generateErr, "Reset": resetErr} {
		if !errors.Is(err, conversations.ErrGenerating) {
			t.Errorf("%s() during generation err = %v, want ErrGenerating", name, err)
		}
	}
	if conversations.MapHTTPStatus(conversations.ErrGenerating) != http.StatusConflict {
		t.Error("ErrGenerating does not map to 409")
	}

	if len(f.recorder.recorded) != 1 {
		t.Errorf("recorded = %d, want 1", len(f.recorder.recorded))
	}

	stored, err := f.sys.Find(ctx, s.ID)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if stored.State != conversations.Done || stored.Generating != nil {
		t.Errorf("stored = %+v", stored)
	}
	if a := stored.Answers["policy_number"]; !a.Result.OK() || a.Result.Value != "302786965" {
		t.Errorf("policy_number = %+v", a)
	}
}

func TestOrchestratorGenerationFailure(t *testing.T) {
	f := newFixture()
	tpl := claimTemplate()
	tpl.ID = uuid.New()
	tpl.TemplateID = "tpl_broken_v1"
	tpl.BodyMD += " {{unlisted}}"
	f.catalog.templates = append(f.catalog.templates, tpl)
	ctx := context.Background()

	s, _ := f.sys.Start(ctx)
	s, _ = f.sys.Select(ctx, s.ID, "tpl_broken_v1")
	f.sys.Answer(ctx, s.ID, "claimant_full_name", ptr("R"))
	f.sys.Answer(ctx, s.ID, "policy_number", ptr("1"))

	s, err := f.sys.Generate(ctx, s.ID)
	if !errors.Is(err, drafts.ErrUnresolvedPlaceholder) {
		t.Fatalf("err = %v, want ErrUnresolvedPlaceholder", err)
	}
	if s.State != conversations.CollectingAnswers || s.Failure == nil {
		t.Errorf("session = %+v", s)
	}
	if len(f.recorder.recorded) != 0 {
		t.Error("failed draft was recorded")
	}
	if conversations.MapHTTPStatus(err) != http.StatusConflict {
		t.Errorf("status = %d", conversations.MapHTTPStatus(err))
	}
}

func TestOrchestratorUnknownSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := uuid.New()

	if _, err := f.sys.Find(ctx, id); !errors.Is(err, conversations.ErrNotFound) {
		t.Errorf("Find() err = %v", err)
	}
	if _, _, err := f.sys.Answer(ctx, id, "a", nil); !errors.Is(err, conversations.ErrNotFound) {
		t.Errorf("Answer() err = %v", err)
	}
	if err := f.sys.End(ctx, id); !errors.Is(err, conversations.ErrNotFound) {
		t.Errorf("End() err = %v", err)
	}
}

func setupMux(h *conversations.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func TestHandlerSession(t *testing.T) {
	f := newFixture()
	mux := setupMux(f.sys.Handler())

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
		return rec
	}

	rec := do("POST", "/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d", rec.Code)
	}
	var s conversations.Session
	json.NewDecoder(rec.Body).Decode(&s)
	base := "/sessions/" + s.ID.String()

	if rec := do("GET", base+"/questions", nil); rec.Code != http.StatusConflict {
		t.Errorf("questions before selection = %d, want 409", rec.Code)
	}

	if rec := do("POST", base+"/select", conversations.SelectRequest{Template: "tpl_insurance_claim_letter_v1"}); rec.Code != http.StatusOK {
		t.Fatalf("select status = %d: %s", rec.Code, rec.Body)
	}

	rec = do("GET", base+"/questions", nil)
	var questions []variables.Question
	json.NewDecoder(rec.Body).Decode(&questions)
	if len(questions) != 2 || questions[0].Key != "claimant_full_name" {
		t.Errorf("questions = %+v", questions)
	}

	rec = do("POST", base+"/answers", conversations.AnswerRequest{Key: "policy_number", Value: ptr("x1")})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d", rec.Code)
	}
	var ans conversations.AnswerResponse
	json.NewDecoder(rec.Body).Decode(&ans)
	if ans.Result.Error == nil || ans.Result.Error.Kind != variables.KindTypeMismatch {
		t.Errorf("result = %+v", ans.Result)
	}
	if len(ans.Pending) != 2 {
		t.Errorf("pending = %+v", ans.Pending)
	}

	if rec := do("POST", base+"/generate", nil); rec.Code != http.StatusConflict {
		t.Errorf("generate incomplete = %d, want 409", rec.Code)
	}

	do("POST", base+"/answers", conversations.AnswerRequest{Key: "policy_number", Value: ptr("302786965")})
	do("POST", base+"/answers", conversations.AnswerRequest{Key: "claimant_full_name", Value: ptr("Rajesh Kumar")})

	rec = do("POST", base+"/generate", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body)
	}
	var d drafts.Draft
	json.NewDecoder(rec.Body).Decode(&d)
	if d.DraftMD != "Dear Rajesh Kumar, re policy 302786965." {
		t.Errorf("draft = %q", d.DraftMD)
	}

	if rec := do("DELETE", base, nil); rec.Code != http.StatusNoContent {
		t.Errorf("end status = %d", rec.Code)
	}
	if rec := do("GET", base, nil); rec.Code != http.StatusNotFound {
		t.Errorf("find after end = %d", rec.Code)
	}
}

func TestHandlerBadRequests(t *testing.T) {
	f := newFixture()
	mux := setupMux(f.sys.Handler())

	s, _ := f.sys.Start(context.Background())
	base := "/sessions/" + s.ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad id", "GET", "/sessions/nope", "", http.StatusBadRequest},
		{"blank query", "POST", base + "/query", `{"query":""}`, http.StatusBadRequest},
		{"unknown field", "POST", base + "/answers", `{"key":"a","val":"x"}`, http.StatusBadRequest},
		{"blank template", "POST", base + "/select", `{"template":" "}`, http.StatusBadRequest},
		{"answer without template", "POST", base + "/answers", `{"key":"a","value":"x"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}
