package usecase

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/cybergard/ebiosgard/pkg/service/catalog"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/at1_system.md
var at1SystemPromptTmpl string

//go:embed prompt/at2_system.md
var at2SystemPromptTmpl string

//go:embed prompt/at3_system.md
var at3SystemPromptTmpl string

//go:embed prompt/at4_system.md
var at4SystemPromptTmpl string

//go:embed prompt/at6_system.md
var at6SystemPromptTmpl string

var (
	at1SystemPrompt = template.Must(template.New("at1_system").Parse(at1SystemPromptTmpl))
	at2SystemPrompt = template.Must(template.New("at2_system").Parse(at2SystemPromptTmpl))
	at3SystemPrompt = template.Must(template.New("at3_system").Parse(at3SystemPromptTmpl))
	at4SystemPrompt = template.Must(template.New("at4_system").Parse(at4SystemPromptTmpl))
	at6SystemPrompt = template.Must(template.New("at6_system").Parse(at6SystemPromptTmpl))
)

// renderSystemPrompt injects the catalog bundle into a workshop's
// system prompt template.
func renderSystemPrompt(tmpl *template.Template, bundle catalog.Bundle) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, bundle); err != nil {
		return "", goerr.Wrap(err, "failed to render system prompt", goerr.V("template", tmpl.Name()))
	}
	return sb.String(), nil
}
