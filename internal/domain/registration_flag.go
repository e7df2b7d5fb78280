package domain

// RegistrationFlag a named on/off switch (e.g. "delegate_registration_open")
type RegistrationFlag struct {
	Label string `db:"label" json:"label"`
	Value bool   `db:"value" json:"value"`
}
