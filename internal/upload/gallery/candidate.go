package gallery

// Candidate is raw file data awaiting validation and upload. It is created
// when files are selected and discarded once the coordinator has consumed it.
type Candidate struct {
	// Name is the user-facing file name, used in warnings and notifications.
	Name string
	// MediaType is the declared media type, e.g. "image/png".
	MediaType string
	// Data is the full file content.
	Data []byte
}

// Size is the declared byte length of the candidate.
func (c Candidate) Size() int64 {
	return int64(len(c.Data))
}
