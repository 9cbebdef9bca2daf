package types

import "github.com/angelmondragon/graingrove-backend/pkg/enums"

// Notice is a user-facing message raised while handling a request.
type Notice struct {
	Kind    enums.NoticeKind `json:"kind"`
	Title   string           `json:"title"`
	Message string           `json:"message,omitempty"`
}

type SuccessEnvelope struct {
	Data    any      `json:"data"`
	Notices []Notice `json:"notices"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error   APIError `json:"error"`
	Notices []Notice `json:"notices"`
}
