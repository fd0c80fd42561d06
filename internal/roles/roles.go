package roles

import "strings"

// Role identifica o papel de um usuário no sistema.
type Role string

const (
	GeneralAdmin  Role = "general_admin"
	CityAdmin     Role = "city_admin"
	Mayor         Role = "mayor"
	Vereador      Role = "vereador"
	CaboEleitoral Role = "cabo_eleitoral"
	Voter         Role = "voter"

	// Pending marca convites ainda não aceitos; não possui permissões.
	Pending Role = "pending"
)

var validRoles = map[Role]struct{}{
	GeneralAdmin:  {},
	CityAdmin:     {},
	Mayor:         {},
	Vereador:      {},
	CaboEleitoral: {},
	Voter:         {},
	Pending:       {},
}

// Permissions reúne as sete permissões derivadas do papel.
// Nunca são persistidas: sempre recalculadas a partir do Role.
type Permissions struct {
	CanManageAllCities bool `json:"can_manage_all_cities"`
	CanManageCityUsers bool `json:"can_manage_city_users"`
	CanEditUsers       bool `json:"can_edit_users"`
	CanViewReports     bool `json:"can_view_reports"`
	CanRegisterVoters  bool `json:"can_register_voters"`
	CanViewCityMap     bool `json:"can_view_city_map"`
	CanManageCampaigns bool `json:"can_manage_campaigns"`
}

var permissionTable = map[Role]Permissions{
	GeneralAdmin: {
		CanManageAllCities: true,
		CanManageCityUsers: true,
		CanEditUsers:       true,
		CanViewReports:     true,
		CanRegisterVoters:  true,
		CanViewCityMap:     true,
		CanManageCampaigns: true,
	},
	CityAdmin: {
		CanManageAllCities: false,
		CanManageCityUsers: true,
		CanEditUsers:       true,
		CanViewReports:     true,
		CanRegisterVoters:  true,
		CanViewCityMap:     true,
		CanManageCampaigns: true,
	},
	Mayor: {
		CanManageAllCities: false,
		CanManageCityUsers: false,
		CanEditUsers:       false,
		CanViewReports:     true,
		CanRegisterVoters:  false,
		CanViewCityMap:     true,
		CanManageCampaigns: true,
	},
	Vereador: {
		CanManageAllCities: false,
		CanManageCityUsers: false,
		CanEditUsers:       false,
		CanViewReports:     true,
		CanRegisterVoters:  true,
		CanViewCityMap:     true,
		CanManageCampaigns: false,
	},
	CaboEleitoral: {
		CanManageAllCities: false,
		CanManageCityUsers: false,
		CanEditUsers:       false,
		CanViewReports:     false,
		CanRegisterVoters:  true,
		CanViewCityMap:     true,
		CanManageCampaigns: false,
	},
	Voter: {},
}

// PermissionsFor devolve o conjunto canônico de permissões do papel.
// Papéis desconhecidos e pending retornam o conjunto vazio.
func PermissionsFor(role Role) Permissions {
	return permissionTable[role]
}

// Normalize padroniza o papel informado.
func Normalize(role string) Role {
	return Role(strings.ToLower(strings.TrimSpace(role)))
}

// IsValid informa se o papel é suportado.
func IsValid(role Role) bool {
	_, ok := validRoles[role]
	return ok
}

// IsStaffSlot indica se o papel ocupa um dos quatro slots de cidade
// (administrador, prefeito, vereador ou cabo eleitoral).
func IsStaffSlot(role Role) bool {
	switch role {
	case CityAdmin, Mayor, Vereador, CaboEleitoral:
		return true
	}
	return false
}

// CityScoped indica se o papel enxerga apenas registros da própria cidade.
func CityScoped(role Role) bool {
	switch role {
	case CityAdmin, Mayor:
		return true
	}
	return false
}
