package enums

import "fmt"

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeError NoticeKind = "error"
)

var validNoticeKinds = []NoticeKind{
	NoticeInfo,
	NoticeError,
}

// IsValid reports whether the value is a known NoticeKind.
func (k NoticeKind) IsValid() bool {
	for _, candidate := range validNoticeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseNoticeKind converts raw input into a NoticeKind.
func ParseNoticeKind(value string) (NoticeKind, error) {
	for _, candidate := range validNoticeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notice kind %q", value)
}
