// Package types provides type definitions for structured data used throughout the placement portal.
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names of a CompanyDraft as they appear on the wire.
const (
	FieldName             = "name"
	FieldLinkedIn         = "linkedIn"
	FieldNatureOfBusiness = "natureOfBusiness"
	FieldLogo             = "logo"
	FieldWebsite          = "website"
	FieldExpectedCTC      = "expectedCTC"
	FieldExpectedBase     = "expectedBase"
	FieldExpectedStipend  = "expectedStipend"
	FieldLocation         = "location"
	FieldRemarks          = "remarks"
)

// DraftFields lists every CompanyDraft field in form order.
var DraftFields = []string{
	FieldLinkedIn,
	FieldName,
	FieldNatureOfBusiness,
	FieldLogo,
	FieldWebsite,
	FieldExpectedCTC,
	FieldExpectedBase,
	FieldExpectedStipend,
	FieldLocation,
	FieldRemarks,
}

// CompanyDraft is the in-progress, unsaved company record.
// Every field is free text; the backend owns validation.
type CompanyDraft struct {
	Name             string `json:"name" yaml:"name" validate:"required,max=100"`
	LinkedIn         string `json:"linkedIn" yaml:"linkedIn" validate:"omitempty,url"`
	NatureOfBusiness string `json:"natureOfBusiness" yaml:"natureOfBusiness"`
	Logo             string `json:"logo" yaml:"logo" validate:"omitempty,url"`
	Website          string `json:"website" yaml:"website" validate:"omitempty,url"`
	ExpectedCTC      string `json:"expectedCTC" yaml:"expectedCTC" validate:"omitempty,numeric"`
	ExpectedBase     string `json:"expectedBase" yaml:"expectedBase" validate:"omitempty,numeric"`
	ExpectedStipend  string `json:"expectedStipend" yaml:"expectedStipend" validate:"omitempty,numeric"`
	Location         string `json:"location" yaml:"location"`
	Remarks          string `json:"remarks" yaml:"remarks" validate:"max=1000"`
}

// Get returns the value of the named field.
func (d *CompanyDraft) Get(field string) (string, bool) {
	p := d.field(field)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Set assigns value to the named field. It reports false for unknown names.
func (d *CompanyDraft) Set(field, value string) bool {
	p := d.field(field)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// TrimSpace trims surrounding whitespace from every field.
func (d *CompanyDraft) TrimSpace() {
	for _, name := range DraftFields {
		p := d.field(name)
		*p = strings.TrimSpace(*p)
	}
}

func (d *CompanyDraft) field(name string) *string {
	switch name {
	case FieldName:
		return &d.Name
	case FieldLinkedIn:
		return &d.LinkedIn
	case FieldNatureOfBusiness:
		return &d.NatureOfBusiness
	case FieldLogo:
		return &d.Logo
	case FieldWebsite:
		return &d.Website
	case FieldExpectedCTC:
		return &d.ExpectedCTC
	case FieldExpectedBase:
		return &d.ExpectedBase
	case FieldExpectedStipend:
		return &d.ExpectedStipend
	case FieldLocation:
		return &d.Location
	case FieldRemarks:
		return &d.Remarks
	default:
		return nil
	}
}

// FieldError is a validation failure attributed to one named input.
type FieldError struct {
	Param string `json:"param"`
	Error string `json:"error"`
}

// ScrapedProfile holds the enrichment fields returned by the scrape endpoint.
// Absent values decode as empty strings.
type ScrapedProfile struct {
	Name             string `json:"name,omitempty"`
	NatureOfBusiness string `json:"natureOfBusiness,omitempty"`
	Website          string `json:"website,omitempty"`
	LinkedIn         string `json:"linkedIn,omitempty"`
	Logo             string `json:"logo,omitempty"`
}

// MergeInto copies every non-empty profile value over the matching draft field.
// Empty profile values leave the draft untouched.
func (p *ScrapedProfile) MergeInto(d *CompanyDraft) {
	if p == nil || d == nil {
		return
	}
	d.Name = firstNonEmpty(p.Name, d.Name)
	d.NatureOfBusiness = firstNonEmpty(p.NatureOfBusiness, d.NatureOfBusiness)
	d.Website = firstNonEmpty(p.Website, d.Website)
	d.LinkedIn = firstNonEmpty(p.LinkedIn, d.LinkedIn)
	d.Logo = firstNonEmpty(p.Logo, d.Logo)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so field errors line up with the form inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the draft and returns one FieldError per failing field,
// in struct order. A nil slice means the draft is acceptable.
func (d *CompanyDraft) Validate() []FieldError {
	err := draftValidator.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Param: "(root)", Error: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Param: fe.Field(),
			Error: fieldErrorMessage(fe),
		})
	}
	return out
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be a number", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
