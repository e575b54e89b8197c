package model

// Meta holds the fields every stored content record carries. Timestamps are
// Unix milliseconds; UpdatedAt is zero until the record is first rewritten.
type Meta struct {
	ID        string `json:"id,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// Metadata gives generic code access to the embedded Meta of any record.
func (m *Meta) Metadata() *Meta { return m }
