package link

// Plan is the Koraki subscription tier reported for a linked application.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPersonal   Plan = "tier1"
	PlanEnterprise Plan = "tier2"
	PlanUnknown    Plan = "unknown"
)

// ParsePlan maps the plan header value to a Plan. Anything unrecognized is
// PlanUnknown.
func ParsePlan(v string) Plan {
	switch p := Plan(v); p {
	case PlanFree, PlanPersonal, PlanEnterprise:
		return p
	default:
		return PlanUnknown
	}
}

// Label is the human-readable plan name.
func (p Plan) Label() string {
	switch p {
	case PlanFree:
		return "Free Plan"
	case PlanPersonal:
		return "Personal Plan"
	case PlanEnterprise:
		return "Enterprise Plan"
	default:
		return "Unknown Plan"
	}
}
