package jobs

import (
	"errors"
	"strings"

	"json2video/publish"
	"json2video/types"
)

// RenderRequest is one unit of work arriving over HTTP, Kafka or from the input directory.
// Exactly one of Document or DocumentPath is set; DocumentPath may be a local path,
// an http(s) URL or an s3:// URI.
type RenderRequest struct {
	JobID        string            `json:"job_id"`
	Document     *types.Document   `json:"document,omitempty"`
	DocumentPath string            `json:"document_path,omitempty"`
	OutputName   string            `json:"output_name,omitempty"`
	Upload       bool              `json:"upload,omitempty"`
	Publish      *publish.Metadata `json:"publish,omitempty"`
}

// Check validates the request envelope; the document itself is validated during assembly
func (r *RenderRequest) Check() error {
	if strings.TrimSpace(r.JobID) == "" {
		return errors.New("job_id is required")
	}
	if strings.ContainsAny(r.JobID, `/\`) || strings.ContainsAny(r.OutputName, `/\`) {
		return errors.New("job_id and output_name must not contain path separators")
	}
	if (r.Document == nil) == (r.DocumentPath == "") {
		return errors.New("exactly one of document or document_path is required")
	}
	return nil
}
