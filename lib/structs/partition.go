package structs

// Partition is one volume-system entry, immutable once enumerated.
// An empty partition list means the whole image is a single filesystem.
type Partition struct {
	Index       uint32 `json:"index"`
	Start       int64  `json:"start"`
	Size        int64  `json:"size"`
	Allocated   bool   `json:"allocated"`
	Description string `json:"description"`
}
