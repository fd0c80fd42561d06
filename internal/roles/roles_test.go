package roles

import "testing"

func TestPermissionsForGeneralAdmin(t *testing.T) {
	p := PermissionsFor(GeneralAdmin)
	all := Permissions{
		CanManageAllCities: true,
		CanManageCityUsers: true,
		CanEditUsers:       true,
		CanViewReports:     true,
		CanRegisterVoters:  true,
		CanViewCityMap:     true,
		CanManageCampaigns: true,
	}
	if p != all {
		t.Fatalf("general_admin deve ter todas as permissões: %+v", p)
	}
}

func TestPermissionsForVoterAndPending(t *testing.T) {
	var zero Permissions
	if PermissionsFor(Voter) != zero {
		t.Fatalf("voter deve ter todas as permissões negadas")
	}
	if PermissionsFor(Pending) != zero {
		t.Fatalf("pending não deve ter permissões")
	}
	if PermissionsFor(Role("desconhecido")) != zero {
		t.Fatalf("papel desconhecido não deve ter permissões")
	}
}

func TestPermissionsTotalOverConcreteRoles(t *testing.T) {
	concrete := []Role{GeneralAdmin, CityAdmin, Mayor, Vereador, CaboEleitoral, Voter}
	for _, role := range concrete {
		if role == Voter {
			continue
		}
		if _, ok := permissionTable[role]; !ok {
			t.Fatalf("papel %s sem entrada na tabela", role)
		}
	}
	if !PermissionsFor(CityAdmin).CanManageCityUsers {
		t.Fatalf("city_admin deve gerenciar usuários da cidade")
	}
	if PermissionsFor(CityAdmin).CanManageAllCities {
		t.Fatalf("city_admin não deve gerenciar todas as cidades")
	}
	if !PermissionsFor(CaboEleitoral).CanRegisterVoters {
		t.Fatalf("cabo eleitoral deve registrar eleitores")
	}
	if PermissionsFor(CaboEleitoral).CanViewReports {
		t.Fatalf("cabo eleitoral não deve ver relatórios")
	}
}

func TestIsStaffSlot(t *testing.T) {
	for _, role := range []Role{CityAdmin, Mayor, Vereador, CaboEleitoral} {
		if !IsStaffSlot(role) {
			t.Fatalf("%s deveria ocupar slot de cidade", role)
		}
	}
	for _, role := range []Role{GeneralAdmin, Voter, Pending} {
		if IsStaffSlot(role) {
			t.Fatalf("%s não ocupa slot de cidade", role)
		}
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	if Normalize("  VEREADOR ") != Vereador {
		t.Fatalf("normalização deveria aceitar maiúsculas e espaços")
	}
	if !IsValid(Voter) || IsValid(Role("prefeito_interino")) {
		t.Fatalf("validação de papéis incorreta")
	}
}
