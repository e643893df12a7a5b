package dialog

type State string

const (
	StateIdle State = "idle"

	// Material wizard
	StateMatPickKind State = "mat_pick_kind"
	StateMatName     State = "mat_name"
	StateMatParam    State = "mat_param" // payload "step" indexes the kind's parameter list
	StateMatColor    State = "mat_color"
	StateMatConfirm  State = "mat_confirm"

	// Stored materials
	StateMatList State = "mat_list"
	StateMatItem State = "mat_item"

	StatePlotSelect State = "plot_select"
	StateImportFile State = "import_file" // waiting for an .xlsx document
	StateEraseAsk   State = "erase_ask"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
