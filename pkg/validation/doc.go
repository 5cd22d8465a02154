// Package validation checks request payloads against their `validate` struct tags
// and reports failures per JSON field name.
//
//	type signup struct {
//		Email string `json:"email" validate:"required,email"`
//	}
//
//	if err := validation.Struct(req); err != nil {
//		var fields validation.Errors
//		errors.As(err, &fields) // {"email": "must be a valid email address"}
//	}
package validation
