package interview

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed prompts/rapport.md
	rapportPolicy string
	//go:embed prompts/technical.md
	technicalPolicy string
	//go:embed prompts/classify.md
	classifyPolicy string
	//go:embed prompts/rephrase.md
	rephrasePolicy string
	//go:embed prompts/analysis.md
	analysisPrompt string
	//go:embed prompts/ladder.yaml
	ladderYAML []byte
)

const (
	// NextQuestionDirective is deliberately generic: the phase policy carries every constraint.
	NextQuestionDirective = "Generate the next interview question."
	analysisSystem        = "You are an expert interview analyst."
	emptyTranscript       = "(no questions asked yet)"
)

// Ladder lists example questions per technology and level, plus project
// question templates where {project} stands for a project name.
type Ladder struct {
	Technologies []TechnologyLadder `yaml:"technologies"`
	Projects     []string           `yaml:"projects"`
}

// TechnologyLadder holds the basic, intermediate and advanced examples of one technology.
type TechnologyLadder struct {
	Name         string   `yaml:"name"`
	Basic        []string `yaml:"basic"`
	Intermediate []string `yaml:"intermediate"`
	Advanced     []string `yaml:"advanced"`
}

var defaultLadder = sync.OnceValues(func() (Ladder, error) {
	return ParseLadder(ladderYAML)
})

// ParseLadder decodes a ladder document.
func ParseLadder(data []byte) (Ladder, error) {
	var ladder Ladder
	if err := yaml.Unmarshal(data, &ladder); err != nil {
		return Ladder{}, fmt.Errorf("parse question ladder: %w", err)
	}
	for i, tech := range ladder.Technologies {
		if strings.TrimSpace(tech.Name) == "" {
			return Ladder{}, fmt.Errorf("parse question ladder: technology %d has no name", i)
		}
	}
	return ladder, nil
}

func (l Ladder) renderTechnologies() string {
	var b strings.Builder
	for _, tech := range l.Technologies {
		fmt.Fprintf(&b, "  %s:\n", tech.Name)
		writeLevel(&b, "Basic", tech.Basic)
		writeLevel(&b, "Intermediate", tech.Intermediate)
		writeLevel(&b, "Advanced", tech.Advanced)
	}
	return b.String()
}

func writeLevel(b *strings.Builder, level string, questions []string) {
	if len(questions) == 0 {
		return
	}
	quoted := make([]string, 0, len(questions))
	for _, q := range questions {
		quoted = append(quoted, fmt.Sprintf("%q", q))
	}
	fmt.Fprintf(b, "    %s: %s\n", level, strings.Join(quoted, ", "))
}

func (l Ladder) renderProjects() string {
	lines := make([]string, 0, len(l.Projects))
	for _, p := range l.Projects {
		lines = append(lines, "  - "+strings.ReplaceAll(p, "{project}", "[Project Name]"))
	}
	return strings.Join(lines, "\n")
}

func transcriptOrPlaceholder(turns []Turn) string {
	if len(turns) == 0 {
		return emptyTranscript
	}
	return FormatTranscript(turns)
}

func buildRapportPolicy(turns []Turn) string {
	return strings.ReplaceAll(rapportPolicy, "{{TRANSCRIPT}}", transcriptOrPlaceholder(turns))
}

func buildTechnicalPolicy(resume string, turns []Turn, ladder Ladder) string {
	policy := strings.ReplaceAll(technicalPolicy, "{{CONTEXT}}", resume)
	policy = strings.ReplaceAll(policy, "{{TRANSCRIPT}}", transcriptOrPlaceholder(turns))
	policy = strings.ReplaceAll(policy, "{{LADDER}}", ladder.renderTechnologies())
	return strings.ReplaceAll(policy, "{{PROJECTS}}", ladder.renderProjects())
}

func buildClassifyMessage(question, reply string) string {
	return fmt.Sprintf("The interviewer asked: %q\nThe candidate replied: %q", question, reply)
}

func buildRephraseMessage(question string) string {
	return fmt.Sprintf("Please rephrase and elaborate the following question for better understanding:\n%q", question)
}

func buildAnalysisPrompt(turns []Turn) string {
	example := make([]string, 0, len(MetricNames))
	for _, name := range MetricNames {
		example = append(example, fmt.Sprintf("  %q: { \"score\": 7, \"comment\": \"...\" }", name))
	}

	prompt := strings.ReplaceAll(analysisPrompt, "{{METRICS}}", strings.Join(MetricNames, ", "))
	prompt = strings.ReplaceAll(prompt, "{{TRANSCRIPT}}", FormatTranscript(turns))
	return strings.ReplaceAll(prompt, "{{EXAMPLE}}", "{\n"+strings.Join(example, ",\n")+"\n}")
}
