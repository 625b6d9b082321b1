package safety

// Resource is a crisis hotline or support service surfaced to the user.
type Resource struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Note    string `json:"note,omitempty"`
}

var immediateResources = []Resource{
	{Name: "988 Suicide & Crisis Lifeline", Contact: "Call or text 988", Note: "24/7, free and confidential"},
	{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
	{Name: "Emergency Services", Contact: "Call 911", Note: "If you are in immediate danger"},
}

var generalResources = []Resource{
	{Name: "988 Suicide & Crisis Lifeline", Contact: "Call or text 988"},
	{Name: "SAMHSA National Helpline", Contact: "1-800-662-4357", Note: "Treatment referral and information"},
}

// ResourcesFor returns the hotline list appropriate for a crisis level:
// the immediate list for high, the general list for medium and low, and
// nothing for none.
func ResourcesFor(level CrisisLevel) []Resource {
	switch level {
	case CrisisHigh:
		return immediateResources
	case CrisisMedium, CrisisLow:
		return generalResources
	default:
		return nil
	}
}
