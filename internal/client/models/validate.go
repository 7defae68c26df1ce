package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/brightstudy/internal/common"
	"github.com/go-playground/validator/v10"
)

// payloadValidate checks documents on ingress from the remote catalog.
var payloadValidate *validator.Validate

func init() {
	payloadValidate = validator.New()
	_ = payloadValidate.RegisterValidation("asseturl", validateAssetURL)
}

// validateAssetURL accepts absolute http(s) URLs and s3://bucket/key locations.
func validateAssetURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil || u.Host == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return true
	case "s3":
		return strings.Trim(u.Path, "/") != ""
	}
	return false
}

func validate(v any) error {
	err := payloadValidate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", common.ErrInvalidPayload, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
}
