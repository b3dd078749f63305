package tui

// loadedMsg reports the result of reloading the registry from storage.
type loadedMsg struct {
	err error
}

// actionDoneMsg reports a finished surface action. notice is shown when
// err is nil.
type actionDoneMsg struct {
	op     string
	notice string
	err    error
}

// Surface actions.
const (
	opUse      = "use"
	opDelete   = "delete"
	opClear    = "clear"
	opCategory = "category"
	opImport   = "import"
	opExport   = "export"
)
