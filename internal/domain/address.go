package domain

// DefaultCountry is preselected on the address step.
const DefaultCountry = "United States"

// Address is a mailing address attached to the company or a person.
// State is constrained to a US state code when the country is the
// United States, free text otherwise.
type Address struct {
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// usStateCodes covers the 50 states plus DC and the inhabited territories.
var usStateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {},
	"IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {},
	"MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {},
	"NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {},
	"TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {}, "DC": {}, "AS": {}, "GU": {}, "MP": {}, "PR": {}, "VI": {},
}

// IsUSStateCode reports whether code is a recognized US state or
// territory abbreviation.
func IsUSStateCode(code string) bool {
	_, ok := usStateCodes[code]
	return ok
}

// Validate checks required fields and the US state-code constraint,
// returning human-readable messages suitable for inline display.
func (a Address) Validate() []string {
	var errs []string
	if a.Street1 == "" {
		errs = append(errs, "Street address is required")
	}
	if a.City == "" {
		errs = append(errs, "City is required")
	}
	if a.ZipCode == "" {
		errs = append(errs, "Zip code is required")
	}
	if a.Country == "" {
		errs = append(errs, "Country is required")
	}
	if a.Country == DefaultCountry {
		if a.State == "" {
			errs = append(errs, "State is required")
		} else if !IsUSStateCode(a.State) {
			errs = append(errs, "State must be a valid US state code")
		}
	}
	return errs
}
