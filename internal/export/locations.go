package export

import (
	"fact-registration/internal/domain"
)

// AssignmentRow one placed workshop on the assignment report.
type AssignmentRow struct {
	Title             string
	Session           int
	Building          string
	RoomNum           string
	Capacity          int
	RegistrationCount int
	CarriedOver       bool
}

// LocationAssignmentSheet is the workbook attached to an assignment run report.
func LocationAssignmentSheet(rows []AssignmentRow) ([]byte, error) {
	cols := []column{
		{"Workshop", 40},
		{"Session", 10},
		{"Building", 25},
		{"Room", 12},
		{"Capacity", 10},
		{"Registrations", 14},
		{"Carried Over", 14},
	}
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		carried := "No"
		if r.CarriedOver {
			carried = "Yes"
		}
		out = append(out, []any{r.Title, r.Session, r.Building, r.RoomNum, r.Capacity, r.RegistrationCount, carried})
	}
	return writeSheet("Workshop Locations", cols, out)
}

// LocationSheetRow a workshop and its room, empty when unassigned.
type LocationSheetRow struct {
	Title    string
	Session  int
	Location *domain.Location
}

// LocationSheet lists every workshop with "building room".
func LocationSheet(rows []LocationSheetRow) ([]byte, error) {
	cols := []column{
		{"Workshop", 40},
		{"Session", 10},
		{"Location", 30},
	}
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		loc := ""
		if r.Location != nil {
			loc = r.Location.DisplayName()
		}
		out = append(out, []any{r.Title, r.Session, loc})
	}
	return writeSheet("Locations", cols, out)
}
