// Package result holds the JSON envelope every runner prints and the
// error taxonomy used to fill it.
package result

import (
	"encoding/json"
	"fmt"
	"io"
)

// Failure is the envelope printed for any failed run.
type Failure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorType Kind   `json:"errorType"`
}

// Media is the envelope printed by the post and story runners.
type Media struct {
	Success bool   `json:"success"`
	MediaID string `json:"mediaId"`
	Code    string `json:"code"`
}

// Fail converts err into a Failure envelope.
func Fail(err error) Failure {
	if err == nil {
		return Failure{Error: "unknown error", ErrorType: KindUnknown}
	}
	return Failure{
		Error:     err.Error(),
		ErrorType: Classify(err),
	}
}

// Write encodes v as a single JSON line.
func Write(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
