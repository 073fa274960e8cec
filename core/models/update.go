package models

// Operation names a field group updated on one backend.
type Operation string

const (
	// OpCustomFields updates retail custom fields (short title, meta title).
	OpCustomFields Operation = "custom_fields"
	// OpWeight updates the retail item weight.
	OpWeight Operation = "weight"
	// OpDescriptions updates the eCom short and long descriptions.
	OpDescriptions Operation = "descriptions"
	// OpImages appends or replaces eCom product images.
	OpImages Operation = "images"
)

// UpdateRequest is the desired state of one field group for one SKU.
type UpdateRequest struct {
	// Match is the resolved identity of the SKU.
	Match Match

	// Backend is the target backend.
	Backend Backend

	// Operation is the field group to update.
	Operation Operation

	// Desired maps field names to desired values.
	Desired map[string]string
}

// SKU returns the business key of the request.
func (r UpdateRequest) SKU() string {
	return r.Match.SKU
}

// UpdateResult is the outcome of exactly one UpdateRequest.
type UpdateResult struct {
	SKU       string    `json:"sku"`
	Backend   Backend   `json:"service"`
	Operation Operation `json:"operation"`
	Success   bool      `json:"success"`

	// Error describes a failure, or annotates a partially failed batch on success.
	Error string `json:"error,omitempty"`

	// Stage names the step that failed (validate, fetch, write).
	Stage string `json:"stage,omitempty"`

	// Note is an informational marker such as "already up to date".
	Note string `json:"note,omitempty"`

	// Changes holds the fields written (or, in dry-run, the fields that would be).
	Changes map[string]string `json:"changes_applied"`
}

// NewResult starts a result for the given request.
func NewResult(req UpdateRequest) UpdateResult {
	return UpdateResult{
		SKU:       req.SKU(),
		Backend:   req.Backend,
		Operation: req.Operation,
		Changes:   map[string]string{},
	}
}

// Unchanged reports whether the result is a successful no-op.
func (r UpdateResult) Unchanged() bool {
	return r.Success && len(r.Changes) == 0
}
