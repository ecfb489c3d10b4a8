package agents

// Role names used as producer/reviewer identifiers throughout the pipeline
// and as reviewer keys in cycle state.
const (
	RoleProductLead      = "product_lead"
	RoleResearch         = "research"
	RoleLeadEngineer     = "lead_engineer"
	RoleSoftwareEngineer = "software_engineer"
	RoleSecurityEngineer = "security_engineer"
)
