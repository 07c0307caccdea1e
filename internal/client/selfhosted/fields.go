package selfhosted

import (
	"github.com/dmitrijs2005/vanguard/internal/client/models"
	"github.com/dmitrijs2005/vanguard/internal/client/validate"
)

// FieldSpec describes one input of the dialog.
type FieldSpec struct {
	Field       models.Field
	Label       string
	Placeholder string
	Optional    bool
}

// Validate runs the validator matching the field's optionality.
func (s FieldSpec) Validate(value string) validate.Result {
	if s.Optional {
		return validate.OptionalURL(value)
	}
	return validate.URL(value)
}

// FieldSpecs drives both validation and rendering. The optional entries sit
// behind the "Custom environment" disclosure.
var FieldSpecs = []FieldSpec{
	{Field: models.FieldServerURL, Label: "Server URL", Placeholder: "https://vault.company.com"},
	{Field: models.FieldWebVaultURL, Label: "Web vault server URL", Placeholder: "https://vault.company.com", Optional: true},
	{Field: models.FieldAPIURL, Label: "API server URL", Placeholder: "https://api.company.com", Optional: true},
	{Field: models.FieldIdentityURL, Label: "Identity server URL", Placeholder: "https://identity.company.com", Optional: true},
	{Field: models.FieldNotificationsURL, Label: "Notifications server URL", Placeholder: "https://notifications.company.com", Optional: true},
	{Field: models.FieldIconsURL, Label: "Icons server URL", Placeholder: "https://icons.company.com", Optional: true},
}

// SpecFor returns the FieldSpec of f.
func SpecFor(f models.Field) (FieldSpec, bool) {
	for _, s := range FieldSpecs {
		if s.Field == f {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Errors maps a field to the message shown under it. Fields without an
// entry are valid. An Errors value is never modified after it is built.
type Errors map[models.Field]string

// compute validates every field in shown against values.
func compute(values models.SelfHostedConfig, shown map[models.Field]bool) Errors {
	errs := Errors{}
	for _, s := range FieldSpecs {
		if !shown[s.Field] {
			continue
		}
		if r := s.Validate(values.Get(s.Field)); !r.Valid() {
			errs[s.Field] = r.Message
		}
	}
	return errs
}
