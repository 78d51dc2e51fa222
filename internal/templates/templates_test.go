package templates_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/JaimeStill/scrivener/internal/templates"
	"github.com/JaimeStill/scrivener/internal/variables"
)

func ptr[T any](v T) *T { return &v }

func validCommand() templates.CreateCommand {
	return templates.CreateCommand{
		Title:           "Residential Lease Termination Notice",
		FileDescription: "Notice from a landlord ending a month-to-month tenancy.",
		DocType:         "notice",
		Jurisdiction:    ptr("CA"),
		SimilarityTags:  []string{"Lease", "termination", "lease"},
		BodyMD:          "Dear {{tenant_name}},\n\nYour tenancy ends on {{ end_date }}.",
		Variables: []variables.Variable{
			{Key: "tenant_name", Label: "Tenant name", Required: true, Example: ptr("Jane Roe")},
			{Key: "end_date", Label: "End date", Required: true, DType: variables.Date, Example: ptr("2026-03-31")},
		},
	}
}

func TestGenerateTemplateID(t *testing.T) {
	tests := []struct {
		title   string
		version int
		want    string
	}{
		{"Residential Lease Termination", 1, "tpl_residential_lease_termination_v1"},
		{"  Café   Agreement!! ", 2, "tpl_cafe_agreement_v2"},
		{"***", 1, "tpl_template_v1"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := templates.GenerateTemplateID(tt.title, tt.version); got != tt.want {
				t.Errorf("GenerateTemplateID(%q, %d) = %q, want %q", tt.title, tt.version, got, tt.want)
			}
		})
	}

	long := templates.GenerateTemplateID(strings.Repeat("word ", 40), 1)
	if len(long) > 64 {
		t.Errorf("generated id %q exceeds 64 bytes", long)
	}
}

func TestNormalize(t *testing.T) {
	cmd := validCommand()
	cmd.Title = "  Title  "
	cmd.Jurisdiction = ptr("   ")
	cmd.SimilarityTags = []string{"  Lease  Renewal ", "lease renewal", "", "NDA"}
	cmd.Variables = []variables.Variable{{Key: " party ", Label: " Party "}}

	got := templates.Normalize(cmd)

	if got.Title != "Title" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Jurisdiction != nil {
		t.Errorf("jurisdiction = %q, want nil", *got.Jurisdiction)
	}
	if diff := cmp.Diff([]string{"lease renewal", "nda"}, got.SimilarityTags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	v := got.Variables[0]
	if v.Key != "party" || v.Label != "Party" || v.DType != variables.String {
		t.Errorf("variable = %+v", v)
	}
	if cmd.Variables[0].Key != " party " {
		t.Error("Normalize modified its input")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*templates.CreateCommand)
		valid    bool
		contains string
	}{
		{
			name:   "valid definition",
			mutate: func(*templates.CreateCommand) {},
			valid:  true,
		},
		{
			name:     "missing title",
			mutate:   func(c *templates.CreateCommand) { c.Title = "  " },
			contains: "title is required",
		},
		{
			name:     "placeholder without variable",
			mutate:   func(c *templates.CreateCommand) { c.BodyMD += " Signed {{landlord}}" },
			contains: "placeholder {{landlord}} has no matching variable",
		},
		{
			name:     "malformed placeholder",
			mutate:   func(c *templates.CreateCommand) { c.BodyMD += " {{Landlord Name}}" },
			contains: "malformed placeholder",
		},
		{
			name: "duplicate variable key",
			mutate: func(c *templates.CreateCommand) {
				c.Variables = append(c.Variables, variables.Variable{Key: "tenant_name", Label: "Again"})
			},
			contains: `duplicate key "tenant_name"`,
		},
		{
			name:     "bad template_id",
			mutate:   func(c *templates.CreateCommand) { c.TemplateID = "Bad ID" },
			contains: "template_id",
		},
		{
			name: "invalid variable",
			mutate: func(c *templates.CreateCommand) {
				c.Variables[0].RegexPattern = ptr("([a-z")
			},
			contains: "variables[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(&cmd)

			res := templates.Check(cmd)
			if res.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v (errors %v)", res.Valid, tt.valid, res.Errors)
			}
			if tt.contains == "" {
				return
			}
			if !strings.Contains(strings.Join(res.Errors, "\n"), tt.contains) {
				t.Errorf("errors %v do not mention %q", res.Errors, tt.contains)
			}
		})
	}
}

func TestCheckWarnsOnOrphans(t *testing.T) {
	cmd := validCommand()
	cmd.Variables = append(cmd.Variables, variables.Variable{Key: "unused", Label: "Unused"})

	res := templates.Check(cmd)
	if !res.Valid {
		t.Fatalf("errors = %v", res.Errors)
	}
	if diff := cmp.Diff([]string{`variable "unused" does not appear in body_md`}, res.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaceholders(t *testing.T) {
	body := "{{a}} and {{ b_1 }} then {{a}} and {{Bad Key}}"

	got := templates.Placeholders(body)
	if len(got) != 4 {
		t.Fatalf("placeholders = %d, want 4", len(got))
	}
	if got[1].Key != "b_1" || body[got[1].Start:got[1].End] != "{{ b_1 }}" {
		t.Errorf("second placeholder = %+v", got[1])
	}
	if got[3].Valid() {
		t.Error("placeholder with space should be invalid")
	}

	if diff := cmp.Diff([]string{"a", "b_1", "Bad Key"}, templates.PlaceholderKeys(body)); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatize(t *testing.T) {
	vars := []variables.Variable{
		{Key: "city", Example: ptr("Springfield")},
		{Key: "city_state", Example: ptr("Springfield, IL")},
		{Key: "initial", Example: ptr("J")},
		{Key: "none"},
	}

	text := "Filed in Springfield, IL by J. Doe. Springfield court."
	want := "Filed in {{city_state}} by J. Doe. {{city}} court."

	if got := templates.Templatize(text, vars); got != want {
		t.Errorf("Templatize() = %q, want %q", got, want)
	}
}

func TestTemplateVariable(t *testing.T) {
	tpl := templates.Template{Variables: validCommand().Variables, BodyMD: "{{tenant_name}}"}

	if _, ok := tpl.Variable("end_date"); !ok {
		t.Error("end_date not found")
	}
	if _, ok := tpl.Variable("missing"); ok {
		t.Error("missing found")
	}
	if diff := cmp.Diff([]string{"end_date"}, tpl.Orphans()); diff != "" {
		t.Errorf("orphans mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLExportImport(t *testing.T) {
	cmd := templates.Normalize(validCommand())
	tpl := &templates.Template{
		ID:              uuid.New(),
		TemplateID:      "tpl_lease_termination_v1",
		Title:           cmd.Title,
		FileDescription: cmd.FileDescription,
		DocType:         cmd.DocType,
		Jurisdiction:    cmd.Jurisdiction,
		SimilarityTags:  cmd.SimilarityTags,
		BodyMD:          cmd.BodyMD,
		Variables:       cmd.Variables,
	}

	var buf bytes.Buffer
	if err := templates.EncodeYAML(&buf, tpl); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "template_id: tpl_lease_termination_v1") {
		t.Errorf("yaml missing template_id:\n%s", buf.String())
	}

	got, err := templates.DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(tpl.Command(), got); diff != "" {
		t.Errorf("definition mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeYAMLRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "  \n"},
		{"unknown field", "title: x\nowner: y\n"},
		{"bad dtype", "title: x\nvariables:\n  - key: a\n    label: A\n    dtype: currency\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := templates.DecodeYAML(strings.NewReader(tt.doc))
			if !errors.Is(err, templates.ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestBrowse(t *testing.T) {
	catalog := []templates.Template{
		{TemplateID: "tpl_nda_v1", Title: "Mutual Non-Disclosure Agreement", DocType: "contract", SimilarityTags: []string{"confidentiality"}},
		{TemplateID: "tpl_lease_v1", Title: "Residential Lease", DocType: "lease"},
		{TemplateID: "tpl_will_v1", Title: "Last Will and Testament", DocType: "will"},
	}

	t.Run("empty query keeps catalog order", func(t *testing.T) {
		got := templates.Browse(catalog, " ", 2)
		if len(got) != 2 || got[0].TemplateID != "tpl_nda_v1" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("fuzzy match", func(t *testing.T) {
		got := templates.Browse(catalog, "lease", 0)
		if len(got) == 0 || got[0].TemplateID != "tpl_lease_v1" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("no match is empty", func(t *testing.T) {
		got := templates.Browse(catalog, "zzqx", 0)
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty slice", got)
		}
	})
}

func TestResolve(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		findFn: func(_ context.Context, got uuid.UUID) (*templates.Template, error) {
			if got != id {
				return nil, templates.ErrNotFound
			}
			return &templates.Template{ID: id}, nil
		},
		findByTemplateIDFn: func(_ context.Context, tid string) (*templates.Template, error) {
			return &templates.Template{TemplateID: tid}, nil
		},
	}

	byID, err := templates.Resolve(context.Background(), sys, id.String())
	if err != nil || byID.ID != id {
		t.Errorf("resolve by uuid = %v, %v", byID, err)
	}

	bySlug, err := templates.Resolve(context.Background(), sys, "tpl_nda_v1")
	if err != nil || bySlug.TemplateID != "tpl_nda_v1" {
		t.Errorf("resolve by template_id = %v, %v", bySlug, err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{templates.ErrNotFound, 404},
		{templates.ErrDuplicate, 409},
		{errors.Join(templates.ErrInvalidDefinition, errors.New("x")), 422},
		{templates.ErrInvalidRequest, 400},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		if got := templates.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
