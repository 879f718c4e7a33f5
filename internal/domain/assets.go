package domain

// Total-assets preference constants: the client either supplies the
// figure or asks staff to compute it.
const (
	AssetsPreferenceProvide = "provide"
	AssetsPreferenceHelp    = "help"
)

// TotalAssets is the company's total gross assets entry.
type TotalAssets struct {
	Value      string `json:"value"`
	Preference string `json:"preference"`
}

// Validate checks the preference flag and the conditional value
// requirement: a value is mandatory only when the client chose to
// provide one.
func (t TotalAssets) Validate() []string {
	var errs []string
	switch t.Preference {
	case AssetsPreferenceProvide:
		if t.Value == "" {
			errs = append(errs, "Total assets value is required")
		}
	case AssetsPreferenceHelp:
		// Value may be empty; staff will compute it.
	default:
		errs = append(errs, "Total assets preference must be selected")
	}
	return errs
}
