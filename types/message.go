package types

// Item is a list command sent over the queue.
type Item struct {
	ID     string `json:"id,omitempty"`
	Action string `json:"action"`
	Value  int    `json:"value,omitempty"`
	Index  int    `json:"index,omitempty"`
	Path   string `json:"path,omitempty"`
}

// Reply is the answer to an Item, published when the sender asked for one.
type Reply struct {
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	PushFront   = "PushFront"
	PushBack    = "PushBack"
	PopFront    = "PopFront"
	PopBack     = "PopBack"
	RemoveAt    = "RemoveAt"
	RemoveValue = "RemoveValue"
	Front       = "Front"
	Back        = "Back"
	ElementAt   = "ElementAt"
	Find        = "Find"
	Print       = "Print"
	Clear       = "Clear"
	Load        = "Load"
	Save        = "Save"
)
