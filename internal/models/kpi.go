package models

import (
	"github.com/shopspring/decimal"
)

type KPIType string

const (
	KPIFinancial   KPIType = "Financiero"
	KPIOperational KPIType = "Operacional"
	KPICustomer    KPIType = "Cliente"
	KPIMarketing   KPIType = "Marketing"
)

var KPITypes = []KPIType{KPIFinancial, KPIOperational, KPICustomer, KPIMarketing}

func (t KPIType) Valid() bool {
	for _, k := range KPITypes {
		if k == t {
			return true
		}
	}
	return false
}

var hundred = decimal.NewFromInt(100)

type KPI struct {
	ID          int64            `json:"id_kpi,omitempty"`
	Name        string           `json:"nombre" validate:"required"`
	Description *string          `json:"descripcion"`
	Target      *decimal.Decimal `json:"valor_objetivo" validate:"omitempty,min=0"`
	Current     decimal.Decimal  `json:"valor_actual" validate:"min=0"`
	Type        KPIType          `json:"tipo" validate:"required,oneof=Financiero Operacional Cliente Marketing"`
	ProjectID   *int64           `json:"id_proyecto"`
	CreatedAt   string           `json:"fecha_creacion,omitempty"`
}

// Progress returns current/target*100 without clamping. ok is false when
// the target is missing or not positive.
func (k KPI) Progress() (decimal.Decimal, bool) {
	if k.Target == nil || !k.Target.IsPositive() {
		return decimal.Zero, false
	}
	return k.Current.Div(*k.Target).Mul(hundred), true
}

// DisplayWidth is the progress bar width in percent, always within [0,100].
func (k KPI) DisplayWidth() int {
	p, ok := k.Progress()
	if !ok {
		return 0
	}
	return ClampPercent(p)
}

func ClampPercent(p decimal.Decimal) int {
	if p.IsNegative() {
		return 0
	}
	if p.GreaterThan(hundred) {
		return 100
	}
	return int(p.Round(0).IntPart())
}

// KPIPayload is the body accepted by create and update: every field minus id and date.
type KPIPayload struct {
	Name        string           `json:"nombre"`
	Description *string          `json:"descripcion"`
	Target      *decimal.Decimal `json:"valor_objetivo"`
	Current     decimal.Decimal  `json:"valor_actual"`
	Type        KPIType          `json:"tipo"`
	ProjectID   *int64           `json:"id_proyecto"`
}

func (k KPI) Payload() KPIPayload {
	return KPIPayload{
		Name:        k.Name,
		Description: k.Description,
		Target:      k.Target,
		Current:     k.Current,
		Type:        k.Type,
		ProjectID:   k.ProjectID,
	}
}
