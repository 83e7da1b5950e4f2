package domain

// categoryDepartments routes each ticket category to the department that
// serves it. Categories without a specialized desk fall through to general.
var categoryDepartments = map[TicketCategory]Department{
	CategoryAccount:        DepartmentGeneral,
	CategoryTechnical:      DepartmentTechnical,
	CategoryPayment:        DepartmentBilling,
	CategoryTrustSafety:    DepartmentTrustSafety,
	CategoryContent:        DepartmentContent,
	CategoryFeatureRequest: DepartmentGeneral,
	CategoryBugReport:      DepartmentGeneral,
	CategoryOther:          DepartmentGeneral,
}

// DepartmentFor returns the department responsible for a ticket category.
func DepartmentFor(category TicketCategory) Department {
	if dept, ok := categoryDepartments[category]; ok {
		return dept
	}
	return DepartmentGeneral
}
