package normalize

import (
	"time"

	"github.com/registrack/backoffice-gateway/internal/domain"
)

// The declared candidate chains, one per canonical field. Chain order is
// load-bearing: it encodes which API versions are most trustworthy for each
// field, and reordering silently changes what users see. New spellings go at
// the end unless a newer endpoint supersedes an older one.

// ClientNameChain resolves the client display name.
var ClientNameChain = NewStringChain(
	domain.PlaceholderClientName,
	Path("cliente"),
	Compose(" ", []string{"cliente", "usuario", "nombre"}, []string{"cliente", "usuario", "apellido"}),
	Path("cliente", "usuario", "nombre"),
	Path("cliente", "usuario", "correo"),
	Path("cliente", "nombre"),
	Path("cliente", "razon_social"),
	FirstPath([]string{"cliente_nombre"}, []string{"nombre_cliente"}),
	Path("orden_servicio", "cliente"),
	Compose(" ", []string{"orden_servicio", "cliente", "usuario", "nombre"}, []string{"orden_servicio", "cliente", "usuario", "apellido"}),
	Path("orden_servicio", "cliente", "nombre"),
)

// EmployeeNameChain resolves the assigned employee display name.
var EmployeeNameChain = NewStringChain(
	domain.PlaceholderEmployeeName,
	Path("empleado"),
	Compose(" ", []string{"empleado", "usuario", "nombre"}, []string{"empleado", "usuario", "apellido"}),
	Path("empleado", "usuario", "nombre"),
	Path("empleado", "usuario", "correo"),
	Path("empleado", "nombre"),
	FirstPath([]string{"empleado_nombre"}, []string{"nombre_empleado"}, []string{"empleado_asignado"}),
	Path("orden_servicio", "empleado", "nombre"),
	Compose(" ", []string{"orden_servicio", "empleado", "usuario", "nombre"}, []string{"orden_servicio", "empleado", "usuario", "apellido"}),
)

// ServiceNameChain resolves the service label on summary and renewal rows.
var ServiceNameChain = NewStringChain(
	"",
	Path("servicio"),
	Path("servicio", "nombre"),
	FirstPath([]string{"nombre_servicio"}, []string{"servicio_nombre"}, []string{"nombre"}),
	Path("orden_servicio", "servicio", "nombre"),
)

// AmountChain resolves money fields. First parseable candidate wins, zero
// when none does.
var AmountChain = NewNumberChain(
	NumberPath("monto"),
	NumberPath("total"),
	NumberPath("monto_total"),
	NumberPath("precio"),
	NumberPath("valor"),
	NumberPath("pago", "monto"),
	NumberPath("orden_servicio", "total"),
	NumberPath("servicio", "precio"),
)

// RecordDateChain resolves the row date.
var RecordDateChain = NewDateChain(
	DatePath("fecha"),
	DatePath("fecha_pago"),
	DatePath("fecha_creacion"),
	DatePath("fecha_solicitud"),
	DatePath("created_at"),
	DatePath("createdAt"),
	DatePath("orden_servicio", "fecha_creacion"),
)

// ExpiryDateChain resolves the renewal target date used for the
// days-remaining derivation.
var ExpiryDateChain = NewDateChain(
	DatePath("fecha_vencimiento"),
	DatePath("fecha_fin"),
	DatePath("fecha_renovacion"),
	DatePath("vencimiento"),
	DatePath("orden_servicio", "fecha_fin"),
)

// StatusChain resolves the row status label.
var StatusChain = NewStringChain(
	domain.PlaceholderStatus,
	Path("estado"),
	Path("estado", "nombre"),
	FirstPath([]string{"estado_nombre"}, []string{"status"}),
	Path("proceso", "estado"),
	Path("orden_servicio", "estado"),
)

// DaysRemainingNumberChain resolves a directly reported days-remaining
// field. The derivation from ExpiryDateChain applies only when this chain is
// exhausted.
var DaysRemainingNumberChain = NewNumberChain(
	NumberPath("dias_restantes"),
	NumberPath("diasRestantes"),
	NumberPath("dias_para_vencer"),
)

// ResolveDaysRemaining applies the direct field first and derives from the
// expiry date only as a fallback, mirroring the chain contract. The second
// return is false when neither source exists.
func ResolveDaysRemaining(record map[string]any, now time.Time) (int, bool) {
	for _, candidate := range DaysRemainingNumberChain.candidates {
		if v, ok := candidate(record); ok {
			return int(v), true
		}
	}
	if target, ok := ExpiryDateChain.Resolve(record); ok {
		return DaysUntil(target, now), true
	}
	return 0, false
}
