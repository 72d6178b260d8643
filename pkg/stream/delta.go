package stream

import "github.com/tidwall/gjson"

const (
	deltaPath        = "candidates.0.content.parts.0.text"
	finishReasonPath = "candidates.0.finishReason"
	errorMessagePath = "error.message"
)

// ExtractDelta returns the incremental text carried by a frame. Frames that
// carry only metadata (usage, safety ratings, finish reasons) or have any
// other shape yield "".
func ExtractDelta(f Frame) string {
	return stringAt(f, deltaPath)
}

// FinishReason returns the candidate finish reason, "" while generation is
// still running.
func FinishReason(f Frame) string {
	return stringAt(f, finishReasonPath)
}

// ErrorMessage returns error.message for error frames sent mid-stream.
func ErrorMessage(f Frame) string {
	return stringAt(f, errorMessagePath)
}

func stringAt(f Frame, path string) string {
	r := gjson.GetBytes(f, path)
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}
