package navigate

// State is a position in the traversal state machine.
//
//	AwaitingTable -> RowScan -> (DetailView -> RowScan)* -> PageAdvance -> AwaitingTable
//	AwaitingTable | PageAdvance -> Done
type State int

const (
	AwaitingTable State = iota
	RowScan
	DetailView
	PageAdvance
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingTable:
		return "awaiting_table"
	case RowScan:
		return "row_scan"
	case DetailView:
		return "detail_view"
	case PageAdvance:
		return "page_advance"
	case Done:
		return "done"
	}
	return "unknown"
}
