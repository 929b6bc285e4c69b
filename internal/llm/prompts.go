package llm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"resume-insights/internal/contract"
	"resume-insights/internal/extract"
)

//go:embed prompts/analysis.txt
var analysisTemplate string

// MaxPromptTextChars caps the résumé text embedded in a prompt.
const MaxPromptTextChars = 24000

// Phrasing carries the per-vendor wording of the analysis prompt.
type Phrasing struct {
	System          string
	Preamble        string
	JSONInstruction string
}

// DefaultPhrasing suits chat-completion models that honour a system message.
var DefaultPhrasing = Phrasing{
	System:          "You are a résumé analysis engine. Respond with JSON only. No markdown. Never omit keys.",
	Preamble:        "You are an expert technical recruiter and ATS specialist.",
	JSONInstruction: "Return a single JSON object that matches the schema exactly. Do not wrap it in markdown.",
}

// Prompt is a rendered system and user message pair.
type Prompt struct {
	System string
	User   string
}

// BuildPrompt renders the analysis prompt for doc and jobRole.
func BuildPrompt(doc extract.Document, jobRole string, phrasing Phrasing) Prompt {
	if phrasing.System == "" {
		phrasing.System = DefaultPhrasing.System
	}
	if phrasing.Preamble == "" {
		phrasing.Preamble = DefaultPhrasing.Preamble
	}
	if phrasing.JSONInstruction == "" {
		phrasing.JSONInstruction = DefaultPhrasing.JSONInstruction
	}
	role := strings.TrimSpace(jobRole)
	if role == "" {
		role = "general professional role"
	}

	replacer := strings.NewReplacer(
		"{{PREAMBLE}}", phrasing.Preamble,
		"{{JOB_ROLE}}", role,
		"{{JSON_INSTRUCTION}}", phrasing.JSONInstruction,
		"{{SCHEMA}}", ResultSchema(),
	)
	return Prompt{
		System: phrasing.System,
		User:   replacer.Replace(analysisTemplate) + "\n\n" + documentBlock(doc),
	}
}

func documentBlock(doc extract.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Résumé (%d page(s)):\n", doc.PageCount)
	b.WriteString(truncate(doc.Text, MaxPromptTextChars))

	wrote := false
	for _, kind := range extract.SectionKinds {
		span := doc.Section(kind)
		if span == "" {
			continue
		}
		if !wrote {
			b.WriteString("\n\nDetected sections:")
			wrote = true
		}
		fmt.Fprintf(&b, "\n[%s]\n%s", kind, truncate(span, MaxPromptTextChars/4))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

var resultSchema = sync.OnceValue(func() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	raw, err := json.MarshalIndent(reflector.Reflect(&contract.AnalysisResult{}), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
})

// ResultSchema returns the JSON schema of contract.AnalysisResult.
func ResultSchema() string {
	return resultSchema()
}
