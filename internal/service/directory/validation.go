package directory

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"wikidesk/internal/config"
	"wikidesk/internal/domain/services"
	"wikidesk/internal/pathcodec"
)

// legalName bridges the PathCodec name gate into an ozzo rule. Pointer
// fields arrive as *string, so indirect before asserting.
var legalName = validation.By(func(value interface{}) error {
	v, _ := validation.Indirect(value)
	name, _ := v.(string)
	return pathcodec.ValidateName(name)
})

// validateCreateRequest validates a directory creation request
func validateCreateRequest(req *services.CreateDirectoryRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxDirectoryNameLength),
			legalName,
		),
		validation.Field(&req.Description,
			validation.RuneLength(0, config.MaxDescriptionLength),
		),
		validation.Field(&req.SortOrder, validation.Min(0)),
	)
}

// validateUpdateRequest validates a directory update request
func validateUpdateRequest(req *services.UpdateDirectoryRequest) error {
	// At least one field must be provided
	if req.Name == nil && req.Description == nil && req.SortOrder == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	rules := []*validation.FieldRules{}

	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.RuneLength(1, config.MaxDirectoryNameLength),
				legalName,
			),
		)
	}
	if req.Description != nil {
		rules = append(rules,
			validation.Field(&req.Description,
				validation.RuneLength(0, config.MaxDescriptionLength),
			),
		)
	}
	if req.SortOrder != nil {
		rules = append(rules, validation.Field(&req.SortOrder, validation.Min(0)))
	}

	return validation.ValidateStruct(req, rules...)
}
