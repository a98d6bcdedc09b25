package models

import "fmt"

// EstadoPartido is the match lifecycle state. Abierto and completo toggle
// automatically from the slot count; finalizado and cancelado are terminal.
type EstadoPartido string

const (
	PartidoAbierto    EstadoPartido = "abierto"
	PartidoCompleto   EstadoPartido = "completo"
	PartidoFinalizado EstadoPartido = "finalizado"
	PartidoCancelado  EstadoPartido = "cancelado"
)

var estadosPartido = map[EstadoPartido]bool{
	PartidoAbierto:    true,
	PartidoCompleto:   true,
	PartidoFinalizado: true,
	PartidoCancelado:  true,
}

func ParseEstadoPartido(s string) (EstadoPartido, error) {
	e := EstadoPartido(s)
	if !estadosPartido[e] {
		return "", fmt.Errorf("estado de partido desconocido: %q", s)
	}
	return e, nil
}

func (e EstadoPartido) Valida() bool { return estadosPartido[e] }

// Terminal reports whether no further transition is permitted.
func (e EstadoPartido) Terminal() bool {
	return e == PartidoFinalizado || e == PartidoCancelado
}

// EstadoParticipacion is the per-user join-request state.
// Rechazado and cancelado are terminal.
type EstadoParticipacion string

const (
	ParticipacionPendiente  EstadoParticipacion = "pendiente"
	ParticipacionConfirmado EstadoParticipacion = "confirmado"
	ParticipacionRechazado  EstadoParticipacion = "rechazado"
	ParticipacionCancelado  EstadoParticipacion = "cancelado"
)

var estadosParticipacion = map[EstadoParticipacion]bool{
	ParticipacionPendiente:  true,
	ParticipacionConfirmado: true,
	ParticipacionRechazado:  true,
	ParticipacionCancelado:  true,
}

func ParseEstadoParticipacion(s string) (EstadoParticipacion, error) {
	e := EstadoParticipacion(s)
	if !estadosParticipacion[e] {
		return "", fmt.Errorf("estado de participacion desconocido: %q", s)
	}
	return e, nil
}

func (e EstadoParticipacion) Valida() bool { return estadosParticipacion[e] }

func (e EstadoParticipacion) Terminal() bool {
	return e == ParticipacionRechazado || e == ParticipacionCancelado
}

// TipoNotificacion enumerates the notification kinds the dispatcher emits.
type TipoNotificacion string

const (
	NotifNuevaSolicitud     TipoNotificacion = "nueva_solicitud"
	NotifSolicitudAceptada  TipoNotificacion = "solicitud_aceptada"
	NotifSolicitudRechazada TipoNotificacion = "solicitud_rechazada"
	NotifPartidoCompleto    TipoNotificacion = "partido_completo"
	NotifRecordatorio       TipoNotificacion = "recordatorio"
	NotifCancelacion        TipoNotificacion = "cancelacion"
)

var tiposNotificacion = map[TipoNotificacion]bool{
	NotifNuevaSolicitud:     true,
	NotifSolicitudAceptada:  true,
	NotifSolicitudRechazada: true,
	NotifPartidoCompleto:    true,
	NotifRecordatorio:       true,
	NotifCancelacion:        true,
}

func (t TipoNotificacion) Valida() bool { return tiposNotificacion[t] }
