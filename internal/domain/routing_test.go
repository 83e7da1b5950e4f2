package domain

import "testing"

func TestDepartmentForCoversEveryCategory(t *testing.T) {
	for _, category := range AllCategories {
		dept := DepartmentFor(category)
		if !ValidDepartment(dept) {
			t.Errorf("category %s routed to unknown department %s", category, dept)
		}
	}
}

func TestDepartmentForSpecializedDesks(t *testing.T) {
	cases := map[TicketCategory]Department{
		CategoryTechnical:      DepartmentTechnical,
		CategoryPayment:        DepartmentBilling,
		CategoryTrustSafety:    DepartmentTrustSafety,
		CategoryContent:        DepartmentContent,
		CategoryAccount:        DepartmentGeneral,
		CategoryFeatureRequest: DepartmentGeneral,
		CategoryBugReport:      DepartmentGeneral,
		CategoryOther:          DepartmentGeneral,
	}
	for category, want := range cases {
		if got := DepartmentFor(category); got != want {
			t.Errorf("DepartmentFor(%s) = %s, want %s", category, got, want)
		}
	}
}

func TestDepartmentForUnknownFallsBack(t *testing.T) {
	if got := DepartmentFor(TicketCategory("mystery")); got != DepartmentGeneral {
		t.Errorf("unknown category should route to general, got %s", got)
	}
}
