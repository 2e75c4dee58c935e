package htmlpage

import "github.com/mesh-intelligence/docket/internal/remote"

// Selectors locate the portal elements the session drives. All values are
// goquery (CSS) selectors.
type Selectors struct {
	Table       string // Results table.
	Rows        string // Data rows, relative to Table.
	ViewControl string // Row element whose nearest link opens the detail view.
	Next        string // Next-page control on the results page.
	Back        string // Return control on the detail view.

	DetailAnchor string // Element present once a detail view is loaded.
	Fields       map[remote.Field]string

	History         string // Movement table rows, header first.
	HistoryCells    string // Cells of a movement row.
	ParticipantsTab   string // Control that reveals the participants table.
	ParticipantsTable string
	Participants      string // Participant rows.
	RoleCell          string // Role cell, relative to a participant row.
	NameCell          string // Name cell, relative to a participant row.
}

// DefaultSelectors returns selectors for the PJN public case consultation.
func DefaultSelectors() Selectors {
	return Selectors{
		Table:       ".table-striped",
		Rows:        "tr:has(td)",
		ViewControl: ".fa-eye",
		Next:        `[id="j_idt118:j_idt208:j_idt215"]`,
		Back:        ".btn-default",

		DetailAnchor: ".col-xs-10",
		Fields: map[remote.Field]string{
			remote.FieldNumber:       ".col-xs-10 span",
			remote.FieldJurisdiction: `[id="expediente:j_idt90:detailCamera"]`,
			remote.FieldDependency:   `[id="expediente:j_idt90:detailDependencia"]`,
			remote.FieldStatus:       `[id="expediente:j_idt90:detailSituation"]`,
			remote.FieldCaption:      `[id="expediente:j_idt90:detailCover"]`,
		},

		History:         `[id="expediente:action-table"] tr`,
		HistoryCells:    "td",
		ParticipantsTab:   `span:contains("Intervinientes")`,
		ParticipantsTable: `[id="expediente:participantsTable"]`,
		Participants:      `[id="expediente:participantsTable"] .rf-dt-r`,
		RoleCell:          "td:nth-child(1)",
		NameCell:          "td:nth-child(2)",
	}
}
