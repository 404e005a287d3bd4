package unit

import (
	"testing"

	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
)

func TestTypeCategory(t *testing.T) {
	tests := []struct {
		typ  Type
		want personnel.Category
	}{
		{TypeMech, personnel.CategoryMech},
		{TypeVehicle, personnel.CategoryMechanic},
		{TypeAero, personnel.CategoryAero},
		{TypeBattleArmor, personnel.CategoryBattleArmor},
		{TypeLargeVessel, personnel.CategoryVessel},
		{Type("walker"), ""},
	}
	for _, tt := range tests {
		if got := tt.typ.Category(); got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.typ, tt.want, got)
		}
	}
	if Type("walker").Valid() {
		t.Fatal("expected unknown type to be invalid")
	}
}

func TestMaintenancePredicates(t *testing.T) {
	tests := []struct {
		name         string
		unit         Unit
		requires     bool
		unmaintained bool
	}{
		{name: "covered", unit: Unit{MaintenanceMinutes: 60, TechID: "t1"}, requires: true},
		{name: "uncovered", unit: Unit{MaintenanceMinutes: 60}, requires: true, unmaintained: true},
		{name: "self crewed", unit: Unit{MaintenanceMinutes: 60, SelfCrewed: true}, requires: true},
		{name: "salvage", unit: Unit{MaintenanceMinutes: 60, Salvage: true}},
		{name: "none", unit: Unit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.unit.RequiresMaintenance(); got != tt.requires {
				t.Fatalf("RequiresMaintenance: expected %v, got %v", tt.requires, got)
			}
			if got := tt.unit.Unmaintained(); got != tt.unmaintained {
				t.Fatalf("Unmaintained: expected %v, got %v", tt.unmaintained, got)
			}
		})
	}
}
