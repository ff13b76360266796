package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

type QueryParams struct {
	Prompt string `json:"prompt" validate:"required"`
}

type SearchParams struct {
	Prompt string `json:"prompt" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=0"`
}

type DocumentParams struct {
	Text string `json:"text" validate:"required"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QueryParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *SearchParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *DocumentParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type SearchResponse struct {
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	Found     bool      `json:"found"`
	Timestamp time.Time `json:"timestamp"`
}

type Source struct {
	DocID    int64   `json:"doc_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

type DocumentResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
