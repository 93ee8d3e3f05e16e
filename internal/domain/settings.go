package domain

// Settings is the per-user notification configuration.
type Settings struct {
	EmailEnabled      bool `json:"emailEnabled"`
	PushEnabled       bool `json:"pushEnabled"`
	DeadlineReminders bool `json:"deadlineReminders"`
	GradeAlerts       bool `json:"gradeAlerts"`
}

// DefaultSettings is the deterministic fallback used when the settings
// endpoint is unreachable and the optimistic baseline before bootstrap.
func DefaultSettings() Settings {
	return Settings{
		EmailEnabled:      true,
		PushEnabled:       true,
		DeadlineReminders: true,
		GradeAlerts:       true,
	}
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	EmailEnabled      *bool `json:"emailEnabled,omitempty"`
	PushEnabled       *bool `json:"pushEnabled,omitempty"`
	DeadlineReminders *bool `json:"deadlineReminders,omitempty"`
	GradeAlerts       *bool `json:"gradeAlerts,omitempty"`
}

// Apply returns a copy of s with the patch's non-nil fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.EmailEnabled != nil {
		s.EmailEnabled = *p.EmailEnabled
	}
	if p.PushEnabled != nil {
		s.PushEnabled = *p.PushEnabled
	}
	if p.DeadlineReminders != nil {
		s.DeadlineReminders = *p.DeadlineReminders
	}
	if p.GradeAlerts != nil {
		s.GradeAlerts = *p.GradeAlerts
	}
	return s
}
