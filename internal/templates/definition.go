package templates

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/scrivener/internal/variables"
	"github.com/JaimeStill/scrivener/pkg/fold"
)

const slugLimit = 48

var (
	templateIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,63}$`)
	validate          = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GenerateTemplateID derives a template_id from title: tpl_<slug>_v<version>.
func GenerateTemplateID(title string, version int) string {
	slug := fold.Slug(title, "_", slugLimit)
	if slug == "" {
		slug = "template"
	}
	return fmt.Sprintf("tpl_%s_v%d", slug, version)
}

// Normalize returns a copy of cmd with text fields trimmed, similarity tags
// folded and de-duplicated, and unset dtypes defaulted to string. The body is
// left untouched.
func Normalize(cmd CreateCommand) CreateCommand {
	out := cmd
	out.TemplateID = strings.TrimSpace(cmd.TemplateID)
	out.Title = strings.TrimSpace(cmd.Title)
	out.FileDescription = strings.TrimSpace(cmd.FileDescription)
	out.DocType = strings.TrimSpace(cmd.DocType)

	if cmd.Jurisdiction != nil {
		if j := strings.TrimSpace(*cmd.Jurisdiction); j != "" {
			out.Jurisdiction = &j
		} else {
			out.Jurisdiction = nil
		}
	}

	out.SimilarityTags = make([]string, 0, len(cmd.SimilarityTags))
	for _, tag := range cmd.SimilarityTags {
		tag = strings.Join(strings.Fields(fold.String(tag)), " ")
		if tag != "" && !slices.Contains(out.SimilarityTags, tag) {
			out.SimilarityTags = append(out.SimilarityTags, tag)
		}
	}

	out.Variables = make([]variables.Variable, len(cmd.Variables))
	for i, v := range cmd.Variables {
		v.Key = strings.TrimSpace(v.Key)
		v.Label = strings.TrimSpace(v.Label)
		if v.DType == "" {
			v.DType = variables.String
		}
		out.Variables[i] = v
	}

	return out
}

// Check normalizes cmd and reports every authoring problem with it.
func Check(cmd CreateCommand) CheckResult {
	cmd = Normalize(cmd)
	problems := problems(cmd)
	return CheckResult{
		Valid:    len(problems) == 0,
		Errors:   problems,
		Warnings: warnings(cmd),
	}
}

// prepare normalizes cmd for publication. The returned error wraps
// ErrInvalidDefinition and lists every problem.
func prepare(cmd CreateCommand) (CreateCommand, []string, error) {
	cmd = Normalize(cmd)
	if p := problems(cmd); len(p) > 0 {
		return cmd, nil, fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(p, "; "))
	}
	return cmd, warnings(cmd), nil
}

func problems(cmd CreateCommand) []string {
	var out []string

	if err := validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				out = append(out, describe(fe))
			}
		} else {
			out = append(out, err.Error())
		}
	}

	if cmd.TemplateID != "" && !templateIDPattern.MatchString(cmd.TemplateID) {
		out = append(out, fmt.Sprintf("template_id %q must be lowercase letters, digits, '_' or '-'", cmd.TemplateID))
	}

	keys := make(map[string]bool, len(cmd.Variables))
	for i, v := range cmd.Variables {
		if err := v.Check(); err != nil {
			out = append(out, fmt.Sprintf("variables[%d]: %v", i, err))
		}
		if keys[v.Key] {
			out = append(out, fmt.Sprintf("variables[%d]: duplicate key %q", i, v.Key))
		}
		keys[v.Key] = true
	}

	var reported []string
	for _, p := range Placeholders(cmd.BodyMD) {
		if slices.Contains(reported, p.Key) {
			continue
		}
		switch {
		case !p.Valid():
			out = append(out, fmt.Sprintf("malformed placeholder {{%s}}", p.Key))
			reported = append(reported, p.Key)
		case !keys[p.Key]:
			out = append(out, fmt.Sprintf("placeholder {{%s}} has no matching variable", p.Key))
			reported = append(reported, p.Key)
		}
	}

	return out
}

func warnings(cmd CreateCommand) []string {
	var out []string
	for _, key := range orphans(cmd.BodyMD, cmd.Variables) {
		out = append(out, fmt.Sprintf("variable %q does not appear in body_md", key))
	}
	return out
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "CreateCommand.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds maximum length %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
