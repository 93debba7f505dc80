package parser

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/kholles/internal/apperr"
	"github.com/starford/kholles/internal/models"
)

// weekDescriptor mirrors the week schema. It has no "number" key: numbering
// comes from the file name only.
type weekDescriptor struct {
	Date        *models.Date      `yaml:"date" json:"date"`
	Description *string           `yaml:"description" json:"description"`
	Proofs      *[]models.ProofID `yaml:"proofs" json:"proofs"`
}

// Validate checks that every required key is present. An empty
// description is allowed.
func (d *weekDescriptor) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Date, validation.NotNil),
		validation.Field(&d.Description, validation.NotNil),
		validation.Field(&d.Proofs, validation.NotNil),
	)
}

// ParseWeekNumber parses a descriptor file stem ("07") into a week number.
func ParseWeekNumber(stem string) (models.WeekNumber, error) {
	n, err := strconv.ParseUint(stem, 10, 8)
	if err != nil {
		return 0, apperr.Kind(apperr.ErrInvalidIdentifier, fmt.Errorf("week number %q: %w", stem, err))
	}
	if n == 0 {
		return 0, apperr.Kind(apperr.ErrInvalidIdentifier, fmt.Errorf("week number %q: must be positive", stem))
	}
	return models.WeekNumber(n), nil
}

// ParseWeekBody validates a week descriptor's YAML without numbering it.
func ParseWeekBody(raw []byte) (models.WeekBody, error) {
	var d weekDescriptor
	if err := decodeYAML(raw, weekFieldTypes, &d); err != nil {
		return models.WeekBody{}, err
	}
	if err := d.Validate(); err != nil {
		return models.WeekBody{}, apperr.Kind(apperr.ErrSchema, err)
	}
	return models.WeekBody{
		Date:        *d.Date,
		Description: *d.Description,
		Proofs:      *d.Proofs,
	}, nil
}

// ParseWeek parses a descriptor and numbers it from its file stem.
func ParseWeek(raw []byte, stem string) (models.Week, error) {
	n, err := ParseWeekNumber(stem)
	if err != nil {
		return models.Week{}, err
	}
	body, err := ParseWeekBody(raw)
	if err != nil {
		return models.Week{}, err
	}
	return body.Numbered(n), nil
}
