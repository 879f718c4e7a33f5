package domain

// Officer is a company officer listed on the intake form.
type Officer struct {
	Name    string  `json:"name"`
	Title   string  `json:"title"`
	Address Address `json:"address"`
}

// Validate checks the officer's required fields.
func (o Officer) Validate() []string {
	var errs []string
	if o.Name == "" {
		errs = append(errs, "Officer name is required")
	}
	if o.Title == "" {
		errs = append(errs, "Officer title is required")
	}
	errs = append(errs, o.Address.Validate()...)
	return errs
}

// Director is a company director listed on the intake form.
type Director struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// Validate checks the director's required fields.
func (d Director) Validate() []string {
	var errs []string
	if d.Name == "" {
		errs = append(errs, "Director name is required")
	}
	errs = append(errs, d.Address.Validate()...)
	return errs
}
