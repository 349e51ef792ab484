package types

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the structured outcome of one conversion job
type Result struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

// Succeeded builds a success result for the rendered file
func Succeeded(outputPath string) Result {
	return Result{Status: StatusSuccess, OutputPath: outputPath}
}

// Failed converts any pipeline error into an error result
func Failed(err error) Result {
	if err == nil {
		return Result{Status: StatusError, Message: "unknown error"}
	}
	return Result{Status: StatusError, Message: err.Error()}
}

// OK reports whether the job produced a video
func (r Result) OK() bool { return r.Status == StatusSuccess }
