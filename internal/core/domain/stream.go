package domain

type StreamKind string

const (
	StreamKindVideo      StreamKind = "video"
	StreamKindAudio      StreamKind = "audio"
	StreamKindWeb        StreamKind = "web"
	StreamKindOverlay    StreamKind = "overlay"
	StreamKindBackground StreamKind = "background"
)

// DataSourceCustom marks streams created through the control protocol rather
// than ingested from an external list.
const DataSourceCustom = "custom"

// Stream describes one entry in the stream catalog. Field names follow the
// wire format consumed by control clients.
type Stream struct {
	ID         string     `json:"_id"`
	Link       string     `json:"link"`
	Source     string     `json:"source,omitempty"`
	Title      string     `json:"title,omitempty"`
	Kind       StreamKind `json:"kind,omitempty"`
	Label      string     `json:"label,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	Country    string     `json:"country,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Status     string     `json:"status,omitempty"`
	Rotation   int        `json:"rotation,omitempty"`
	DataSource string     `json:"_dataSource,omitempty"`
}
