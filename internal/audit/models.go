package audit

import "time"

// Category classifies events for routing and retention.
type Category string

const (
	CategorySecurity   Category = "security"
	CategoryOperations Category = "operations"
)

// Action names what happened.
type Action string

const (
	ActionLogin                Action = "login"
	ActionLoginFailed          Action = "login_failed"
	ActionLogout               Action = "logout"
	ActionRoleSwitched         Action = "role_switched"
	ActionRoleRestored         Action = "role_restored"
	ActionRegistrationConflict Action = "registration_conflict"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"user_id,omitempty"`
	SessionID    string    `json:"session_id,omitempty"`
	Role         string    `json:"role,omitempty"`
	PreviousRole string    `json:"previous_role,omitempty"`
	FeatureID    string    `json:"feature_id,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// Key is the partitioning key used by streaming sinks: events of one
// session stay ordered.
func (e Event) Key() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.UserID
}
