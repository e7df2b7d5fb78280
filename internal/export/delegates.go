package export

import (
	"fact-registration/internal/domain"
)

// DelegateSheet the registration roster sent with registration updates.
func DelegateSheet(rows []*domain.DelegateRosterRow) ([]byte, error) {
	cols := []column{
		{"First Name", 16},
		{"Last Name", 16},
		{"Email", 30},
		{"Pronouns", 12},
		{"Year", 10},
		{"School", 30},
		{"Session 1", 30},
		{"Session 2", 30},
		{"Session 3", 30},
	}
	out := make([][]any, 0, len(rows))
	for _, d := range rows {
		out = append(out, []any{
			d.FirstName, d.LastName, d.Email, d.Pronouns, d.Year, d.School,
			d.Sessions[0], d.Sessions[1], d.Sessions[2],
		})
	}
	return writeSheet("Delegates", cols, out)
}
