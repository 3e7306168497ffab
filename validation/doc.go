// Package validation checks request input and reports failures as
// *errors.AppError values with per-field details.
//
// Struct tags are checked with go-playground/validator:
//
//	type NewBook struct {
//	    Title string `json:"title" validate:"required,max=255"`
//	    Body  string `json:"body" validate:"required"`
//	}
//	err := validation.Validate(req)
//
// Ad-hoc checks use a Validator that collects errors:
//
//	v := validation.New()
//	v.Required("title", title).MaxLength("title", title, 255)
//	if err := v.Validate(); err != nil { ... }
package validation
