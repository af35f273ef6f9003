package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

// Templates holds the built-in explanation prompts.
//
//go:embed templates/*.txt
var Templates embed.FS

var (
	questionTagRegex = regexp.MustCompile(`(?i)</?\s*question\b[^>]*>`)
	systemTagRegex   = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

const maxQuestionRunes = 10000

// PromptVariant selects how verbose an explanation should be.
type PromptVariant string

const (
	// PromptBrief asks for a few sentences about the correct answer.
	PromptBrief PromptVariant = "brief"
	// PromptDetailed also walks through the wrong options.
	PromptDetailed PromptVariant = "detailed"
)

var validVariants = map[PromptVariant]bool{
	PromptBrief:    true,
	PromptDetailed: true,
}

var (
	loadOnce         sync.Once
	loadErr          error
	explainTemplates map[PromptVariant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// ExplainData holds template data for explanation prompts.
type ExplainData struct {
	Question string
	Options  []string
	Answer   string
	Multi    bool
	Language string
}

// Load parses the explanation templates from fsys.
// Templates are loaded only once per process.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		explainTemplates = make(map[PromptVariant]*template.Template)
		for _, v := range []PromptVariant{PromptBrief, PromptDetailed} {
			name := "templates/explain_" + string(v) + ".txt"
			content, err := fs.ReadFile(fsys, name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			explainTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildExplainPrompt renders the system prompt asking the model to explain
// the answer of rec. lang is a human-readable language name.
func BuildExplainPrompt(variant PromptVariant, rec qa.Record, lang string) (string, error) {
	if explainTemplates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := explainTemplates[variant]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt variant: " + string(variant))
	}
	if lang == "" {
		lang = "English"
	}

	options := make([]string, len(rec.Options))
	for i, o := range rec.Options {
		options[i] = sanitize(o)
	}
	data := ExplainData{
		Question: sanitize(rec.Question),
		Options:  options,
		Answer:   rec.Answer.Sorted().Display(),
		Multi:    rec.IsMultiChoice(),
		Language: lang,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// sanitize strips tags that could close the question envelope and caps
// the length of text extracted from a PDF.
func sanitize(s string) string {
	s = questionTagRegex.ReplaceAllString(s, "")
	s = systemTagRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > maxQuestionRunes {
		runes := []rune(s)
		s = string(runes[:maxQuestionRunes]) + "\n[truncated]"
	}
	return s
}
