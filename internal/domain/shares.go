package domain

import "strconv"

// Shares holds the authorized and issued share counts for the two share
// classes. Counts are kept as strings exactly as the client typed them;
// parsing happens only at validation time.
type Shares struct {
	AuthorizedCommon    string `json:"authorizedCommon"`
	AuthorizedPreferred string `json:"authorizedPreferred"`
	IssuedCommon        string `json:"issuedCommon"`
	IssuedPreferred     string `json:"issuedPreferred"`
}

// SharesValidation is the result of validating a Shares record.
type SharesValidation struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

// parseCount parses a share count, treating empty or non-numeric input
// as zero. An empty issued field is therefore always valid against any
// authorized value.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Validate checks that issued shares do not exceed authorized shares for
// each class. Errors are human-readable and name the offending class.
func (s Shares) Validate() SharesValidation {
	var errs []string
	if parseCount(s.IssuedCommon) > parseCount(s.AuthorizedCommon) {
		errs = append(errs, "Issued common shares cannot exceed authorized common shares")
	}
	if parseCount(s.IssuedPreferred) > parseCount(s.AuthorizedPreferred) {
		errs = append(errs, "Issued preferred shares cannot exceed authorized preferred shares")
	}
	return SharesValidation{IsValid: len(errs) == 0, Errors: errs}
}
