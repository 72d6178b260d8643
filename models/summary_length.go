package models

// SummaryLength is the user's choice of summary size. Values other than
// "5" and "10" request a comprehensive summary.
type SummaryLength string

const (
	SummaryLengthFive          SummaryLength = "5"
	SummaryLengthTen           SummaryLength = "10"
	SummaryLengthComprehensive SummaryLength = "full"
)

// BulletCount returns the requested number of bullet points, or 0 for a
// comprehensive summary.
func (l SummaryLength) BulletCount() int {
	switch l {
	case SummaryLengthFive:
		return 5
	case SummaryLengthTen:
		return 10
	default:
		return 0
	}
}
