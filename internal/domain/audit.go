package domain

import "time"

// AccessDecision is one evaluated permission check, persisted for the admin
// audit trail. Denials are as interesting as grants here: the UI hides
// affordances silently, so this table is the only place a denied check is
// visible.
type AccessDecision struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Subject   string    `gorm:"size:255;index:idx_access_decisions_subject" json:"subject"`
	RoleName  string    `gorm:"size:255" json:"role_name"`
	Module    string    `gorm:"size:128;index:idx_access_decisions_module" json:"module"`
	Action    string    `gorm:"size:32" json:"action"`
	Allowed   bool      `gorm:"index:idx_access_decisions_allowed" json:"allowed"`
	Route     string    `gorm:"size:512" json:"route"`
	RequestID string    `gorm:"size:64" json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}
