package extract

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile names the marker strings that delimit a question inside the
// extracted text. DefaultProfile matches the "QUESTION NO:" exam dumps.
type Profile struct {
	IDMarker          string   `yaml:"id_marker" validate:"required"`
	Footer            string   `yaml:"footer"`
	OptionLetters     []string `yaml:"option_letters" validate:"required,min=1,max=6,dive,len=1"`
	AnswerMarker      string   `yaml:"answer_marker" validate:"required"`
	ExplanationMarker string   `yaml:"explanation_marker" validate:"required"`
	MinOptionLen      int      `yaml:"min_option_len" validate:"gte=0"`
}

// DefaultProfile returns the markers used by the "QUESTION NO:" dumps.
func DefaultProfile() Profile {
	return Profile{
		IDMarker:          "QUESTION NO:",
		Footer:            "IT Certification Guaranteed, The Easy Way!",
		OptionLetters:     []string{"A", "B", "C", "D", "E", "F"},
		AnswerMarker:      "Answer:",
		ExplanationMarker: "Explanation:",
		MinOptionLen:      4,
	}
}

// PDFOnlyProfile returns the markers of the dumps that number questions
// as "NO. 12".
func PDFOnlyProfile() Profile {
	p := DefaultProfile()
	p.IDMarker = "NO."
	return p
}

var validate = validator.New()

// Validate checks that the profile has every required marker.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// LoadProfile reads a YAML profile. Fields missing from the file keep
// their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read profile %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// ProfileByName resolves a built-in profile name.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "", "default":
		return DefaultProfile(), nil
	case "pdf-only":
		return PDFOnlyProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want default or pdf-only)", name)
	}
}
