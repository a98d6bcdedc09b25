package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"falta-uno-backend/models"
)

// MemStore keeps everything in maps. It backs the service tests and the
// STORE=memory dev mode. Values are copied in and out so callers never
// share memory with the store.
type MemStore struct {
	mu              sync.Mutex
	profiles        map[string]models.Profile
	partidos        map[string]models.Partido
	participaciones map[string]models.Participacion
	ratings         map[string]models.Rating
	notificaciones  map[string]models.Notificacion

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemStore() *MemStore {
	return &MemStore{
		profiles:        map[string]models.Profile{},
		partidos:        map[string]models.Partido{},
		participaciones: map[string]models.Participacion{},
		ratings:         map[string]models.Rating{},
		notificaciones:  map[string]models.Notificacion{},
		locks:           map[string]*sync.Mutex{},
	}
}

func (s *MemStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	if err := p.Validar(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = *p
	return nil
}

func (s *MemStore) GetPartido(ctx context.Context, id string) (*models.Partido, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.partidos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) SavePartido(ctx context.Context, p *models.Partido) error {
	if err := p.Validar(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partidos[p.ID] = *p
	return nil
}

func (s *MemStore) ListPartidosAbiertos(ctx context.Context) ([]models.Partido, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Partido
	for _, p := range s.partidos {
		if p.Estado == models.PartidoAbierto {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (s *MemStore) ListPartidosPorFinalizar(ctx context.Context, now time.Time) ([]models.Partido, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Partido
	for _, p := range s.partidos {
		if (p.Estado == models.PartidoAbierto || p.Estado == models.PartidoCompleto) &&
			!p.Fecha.After(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) ListPartidosProximos(ctx context.Context, from, to time.Time) ([]models.Partido, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Partido
	for _, p := range s.partidos {
		if p.RecordatorioEnviado || (p.Estado != models.PartidoAbierto && p.Estado != models.PartidoCompleto) {
			continue
		}
		if !p.Fecha.Before(from) && !p.Fecha.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemStore) GetParticipacion(ctx context.Context, id string) (*models.Participacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participaciones[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) GetParticipacionActiva(ctx context.Context, partidoID, usuarioID string) (*models.Participacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participaciones {
		if p.PartidoID == partidoID && p.UsuarioID == usuarioID && p.Activa() {
			p := p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) ListParticipacionesByPartido(ctx context.Context, partidoID string) ([]models.Participacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Participacion
	for _, p := range s.participaciones {
		if p.PartidoID == partidoID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListParticipacionesByUsuario(ctx context.Context, usuarioID string) ([]models.Participacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Participacion
	for _, p := range s.participaciones {
		if p.UsuarioID == usuarioID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) SaveParticipacion(ctx context.Context, p *models.Participacion) error {
	if err := p.Validar(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Activa() {
		for _, otra := range s.participaciones {
			if otra.PartidoID == p.PartidoID && otra.UsuarioID == p.UsuarioID &&
				otra.Activa() && otra.ID != p.ID {
				return ErrDuplicate
			}
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.participaciones[p.ID] = *p
	return nil
}

func (s *MemStore) SaveRating(ctx context.Context, r *models.Rating) error {
	if err := r.Validar(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, otra := range s.ratings {
		if otra.PartidoID == r.PartidoID && otra.EvaluadorID == r.EvaluadorID &&
			otra.EvaluadoID == r.EvaluadoID {
			return ErrDuplicate
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.ratings[r.ID] = *r
	return nil
}

func (s *MemStore) GetRating(ctx context.Context, partidoID, evaluadorID, evaluadoID string) (*models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.ratings {
		if r.PartidoID == partidoID && r.EvaluadorID == evaluadorID && r.EvaluadoID == evaluadoID {
			r := r
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) ListRatingsRecibidos(ctx context.Context, evaluadoID string) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Rating
	for _, r := range s.ratings {
		if r.EvaluadoID == evaluadoID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) SaveNotificacion(ctx context.Context, n *models.Notificacion) error {
	if err := n.Validar(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.notificaciones[n.ID] = *n
	return nil
}

func (s *MemStore) ListNotificaciones(ctx context.Context, usuarioID string, soloNoLeidas bool) ([]models.Notificacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notificacion
	for _, n := range s.notificaciones {
		if n.UsuarioID != usuarioID {
			continue
		}
		if soloNoLeidas && n.Leida {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) ListNotificacionesDesde(ctx context.Context, usuarioID string, desde time.Time) ([]models.Notificacion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notificacion
	for _, n := range s.notificaciones {
		if n.UsuarioID == usuarioID && n.CreatedAt.After(desde) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) MarkNotificacionLeida(ctx context.Context, id, usuarioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notificaciones[id]
	if !ok || n.UsuarioID != usuarioID {
		return ErrNotFound
	}
	n.Leida = true
	s.notificaciones[id] = n
	return nil
}

// ConPartido takes the per-partido mutex for the duration of fn. The domain
// services validate every precondition before their first write, so a
// failed fn leaves no partial mutation behind.
func (s *MemStore) ConPartido(ctx context.Context, partidoID string, fn func(Store) error) error {
	s.locksMu.Lock()
	l, ok := s.locks[partidoID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[partidoID] = l
	}
	s.locksMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(s)
}
