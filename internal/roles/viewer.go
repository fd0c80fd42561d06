package roles

import "github.com/google/uuid"

// Viewer identifica quem consulta os dados; os provedores derivam daqui o
// filtro implícito de visibilidade combinado aos filtros explícitos.
type Viewer struct {
	UserID uuid.UUID
	Role   Role
	CityID *uuid.UUID
}

// SeesAll indica visão irrestrita (administrador geral).
func (v Viewer) SeesAll() bool {
	return v.Role == GeneralAdmin
}

// SeesCity indica visão restrita à própria cidade.
func (v Viewer) SeesCity() bool {
	return CityScoped(v.Role) && v.CityID != nil
}
