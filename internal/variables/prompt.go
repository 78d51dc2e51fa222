package variables

import (
	"strings"
)

// Question is what the conversation asks the user for one variable.
type Question struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Prompt     string   `json:"prompt"`
	Required   bool     `json:"required"`
	DType      DType    `json:"dtype"`
	EnumValues []string `json:"enum_values,omitempty"`
}

// Ask builds the question for v: "Please provide <label>" followed by a
// format hint drawn from the enum set, dtype, or example.
func (v Variable) Ask() Question {
	var b strings.Builder
	b.WriteString("Please provide ")
	b.WriteString(strings.ToLower(v.display()))

	var hints []string
	switch {
	case len(v.EnumValues) > 0:
		hints = append(hints, "one of: "+strings.Join(v.EnumValues, ", "))
	case v.DType.rule().hint != "":
		hints = append(hints, v.DType.rule().hint)
	}
	if v.Example != nil && *v.Example != "" {
		hints = append(hints, "e.g. "+*v.Example)
	}
	if len(hints) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(hints, "; "))
		b.WriteString(")")
	}
	if !v.Required {
		b.WriteString(". Leave blank to skip")
	}

	return Question{
		Key:        v.Key,
		Label:      v.Label,
		Prompt:     b.String(),
		Required:   v.Required,
		DType:      v.DType,
		EnumValues: v.EnumValues,
	}
}
