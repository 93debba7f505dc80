package parser

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/models"
)

// proofFrontmatter mirrors the proof schema with pointer fields so that
// missing keys can be told apart from zero values.
type proofFrontmatter struct {
	ID      *models.ProofID `yaml:"pid" json:"pid"`
	Title   *string         `yaml:"title" json:"title"`
	Note    *string         `yaml:"note" json:"note"`
	Authors *[]string       `yaml:"authors" json:"authors"`
	Date    *models.Date    `yaml:"date" json:"date"`
	Tags    *[]string       `yaml:"tags" json:"tags"`
}

// Validate checks that every required key is present.
func (f *proofFrontmatter) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.ID, validation.NotNil),
		validation.Field(&f.Title, validation.Required),
		validation.Field(&f.Authors, validation.NotNil),
		validation.Field(&f.Date, validation.NotNil),
		validation.Field(&f.Tags, validation.NotNil),
	)
}

// ParseProof splits raw into front matter and body, validates the front
// matter against the proof schema and binds the body as Content.
func ParseProof(raw []byte) (models.Proof, error) {
	block, body, ok := SplitFrontmatter(raw)
	if !ok {
		return models.Proof{}, apperr.Kind(apperr.ErrSchema, errors.New("missing front matter block"))
	}

	var fm proofFrontmatter
	if err := decodeYAML(block, proofFieldTypes, &fm); err != nil {
		return models.Proof{}, err
	}
	if err := fm.Validate(); err != nil {
		return models.Proof{}, apperr.Kind(apperr.ErrSchema, err)
	}

	return models.Proof{
		ID:      *fm.ID,
		Title:   *fm.Title,
		Note:    fm.Note,
		Authors: *fm.Authors,
		Date:    *fm.Date,
		Tags:    *fm.Tags,
		Content: string(body),
	}, nil
}

// decodeYAML checks data against types, then unmarshals it into out.
// Bad dates are apperr.ErrDateFormat, every other failure apperr.ErrSchema.
func decodeYAML(data []byte, types fieldTypes, out any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return apperr.Kind(apperr.ErrSchema, fmt.Errorf("decode yaml: %w", err))
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := resolveAlias(doc.Content[0])
	if root.Kind == yaml.ScalarNode && root.ShortTag() == tagNull {
		return nil
	}
	if err := types.check(root); err != nil {
		return err
	}

	err := doc.Decode(out)
	if err == nil {
		return nil
	}
	var de *models.DateError
	if errors.As(err, &de) {
		return apperr.Kind(apperr.ErrDateFormat, err)
	}
	return apperr.Kind(apperr.ErrSchema, fmt.Errorf("decode yaml: %w", err))
}
