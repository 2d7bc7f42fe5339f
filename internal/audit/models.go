package audit

import (
	"time"

	id "verigate/pkg/domain"
)

// Event is emitted from the verification service to capture key pipeline
// actions. Keep it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	RequestID id.RequestID
	SubjectID id.SubjectID
	Stage     string
	Decision  string
	Reason    string
}
