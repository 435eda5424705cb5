package convert

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"pandoc2hwpx/config"
	"pandoc2hwpx/content"
)

// Values holds variables available for template expansion.
type Values struct {
	Context    string
	Title      string
	Subtitle   string
	Author     string
	Date       string
	SourceFile string
	RefID      string
}

func expandTemplate(c *content.Content, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Option("missingkey=error").Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		SourceFile: sourceBaseName(c.SrcName),
		RefID:      c.RefID.String(),
	}
	if c.Doc != nil {
		values.Title = c.Doc.Meta.Title
		values.Subtitle = c.Doc.Meta.Subtitle
		values.Author = c.Doc.Meta.Author
		values.Date = c.Doc.Meta.Date
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
