package models

type ProjectPhase string

const (
	PhaseActive   ProjectPhase = "Activos"
	PhaseFinished ProjectPhase = "Finalizados"
	PhaseUndated  ProjectPhase = "Sin fecha"
	PhasePlanned  ProjectPhase = "Planificados"
)

type Project struct {
	ID          int64   `json:"id_proyecto,omitempty"`
	Name        string  `json:"nombre" validate:"required"`
	Description *string `json:"descripcion"`
	Start       *Date   `json:"fecha_inicio"`
	End         *Date   `json:"fecha_fin"`
	ManagerID   *int64  `json:"id_pm"`
}

// Active reports whether the project has started and today falls inside
// [start, end]. A project without end date stays active once started.
func (p Project) Active(today Date) bool {
	if p.Start == nil {
		return false
	}
	if p.End == nil {
		return true
	}
	return !today.Before(*p.Start) && !today.After(*p.End)
}

// Phase buckets a project for the phase filter. Planned is a dated project
// whose start is still ahead; a project with an end date that is neither
// active nor planned is finished.
func (p Project) Phase(today Date) ProjectPhase {
	switch {
	case p.Active(today):
		return PhaseActive
	case p.Start != nil && today.Before(*p.Start):
		return PhasePlanned
	case p.End != nil:
		return PhaseFinished
	default:
		return PhaseUndated
	}
}

// DurationDays is the planned length in days, never negative.
func (p Project) DurationDays() (int, bool) {
	if p.Start == nil || p.End == nil {
		return 0, false
	}
	days := int(p.End.Sub(p.Start.Time).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

type ProjectPayload struct {
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion"`
	Start       *Date   `json:"fecha_inicio"`
	End         *Date   `json:"fecha_fin"`
	ManagerID   *int64  `json:"id_pm"`
}

func (p Project) Payload() ProjectPayload {
	return ProjectPayload{
		Name:        p.Name,
		Description: p.Description,
		Start:       p.Start,
		End:         p.End,
		ManagerID:   p.ManagerID,
	}
}
