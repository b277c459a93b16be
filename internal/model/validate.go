package model

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that the relay request names an absolute http(s) URL.
// The method is checked by the relay itself so that it can answer 405.
func (r RelayRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL,
			validation.Required,
			validation.By(validateTargetURL),
		),
	)
}

func validateTargetURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
