package store

import (
	"context"
	"errors"
	"time"

	"falta-uno-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store. Per-partido mutual exclusion is a
// database transaction that takes a row lock on the partido before running
// the mutation, so two concurrent accepts for the last slot serialize at
// the database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates/updates the schema for every core model.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Profile{},
		&models.Partido{},
		&models.Participacion{},
		&models.Rating{},
		&models.Notificacion{},
	)
}

func traducir(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	if err := p.Validar(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) SaveProfile(ctx context.Context, p *models.Profile) error {
	if err := p.Validar(); err != nil {
		return err
	}
	return traducir(s.DB.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) GetPartido(ctx context.Context, id string) (*models.Partido, error) {
	var p models.Partido
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	if err := p.Validar(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *GormStore) SavePartido(ctx context.Context, p *models.Partido) error {
	if err := p.Validar(); err != nil {
		return err
	}
	return traducir(s.DB.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) ListPartidosAbiertos(ctx context.Context) ([]models.Partido, error) {
	var out []models.Partido
	err := s.DB.WithContext(ctx).
		Where("estado = ?", models.PartidoAbierto).
		Order("fecha ASC").
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) ListPartidosPorFinalizar(ctx context.Context, now time.Time) ([]models.Partido, error) {
	var out []models.Partido
	err := s.DB.WithContext(ctx).
		Where("estado IN ? AND fecha <= ?",
			[]models.EstadoPartido{models.PartidoAbierto, models.PartidoCompleto}, now).
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) ListPartidosProximos(ctx context.Context, from, to time.Time) ([]models.Partido, error) {
	var out []models.Partido
	err := s.DB.WithContext(ctx).
		Where("estado IN ? AND recordatorio_enviado = false AND fecha BETWEEN ? AND ?",
			[]models.EstadoPartido{models.PartidoAbierto, models.PartidoCompleto}, from, to).
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) GetParticipacion(ctx context.Context, id string) (*models.Participacion, error) {
	var p models.Participacion
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

func (s *GormStore) GetParticipacionActiva(ctx context.Context, partidoID, usuarioID string) (*models.Participacion, error) {
	var p models.Participacion
	err := s.DB.WithContext(ctx).
		Where("partido_id = ? AND usuario_id = ? AND estado <> ?",
			partidoID, usuarioID, models.ParticipacionCancelado).
		First(&p).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &p, nil
}

func (s *GormStore) ListParticipacionesByPartido(ctx context.Context, partidoID string) ([]models.Participacion, error) {
	var out []models.Participacion
	err := s.DB.WithContext(ctx).
		Where("partido_id = ?", partidoID).
		Order("created_at ASC").
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) ListParticipacionesByUsuario(ctx context.Context, usuarioID string) ([]models.Participacion, error) {
	var out []models.Participacion
	err := s.DB.WithContext(ctx).
		Where("usuario_id = ?", usuarioID).
		Order("created_at DESC").
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) SaveParticipacion(ctx context.Context, p *models.Participacion) error {
	if err := p.Validar(); err != nil {
		return err
	}
	// One active row per (partido, usuario). The state machine already
	// guards this; the check here protects the invariant at the boundary.
	if p.Activa() {
		var count int64
		err := s.DB.WithContext(ctx).Model(&models.Participacion{}).
			Where("partido_id = ? AND usuario_id = ? AND estado <> ? AND id <> ?",
				p.PartidoID, p.UsuarioID, models.ParticipacionCancelado, p.ID).
			Count(&count).Error
		if err != nil {
			return traducir(err)
		}
		if count > 0 {
			return ErrDuplicate
		}
	}
	return traducir(s.DB.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) SaveRating(ctx context.Context, r *models.Rating) error {
	if err := r.Validar(); err != nil {
		return err
	}
	// The unique index on (partido, evaluador, evaluado) backs this up.
	return traducir(s.DB.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) GetRating(ctx context.Context, partidoID, evaluadorID, evaluadoID string) (*models.Rating, error) {
	var r models.Rating
	err := s.DB.WithContext(ctx).
		Where("partido_id = ? AND evaluador_id = ? AND evaluado_id = ?",
			partidoID, evaluadorID, evaluadoID).
		First(&r).Error
	if err != nil {
		return nil, traducir(err)
	}
	return &r, nil
}

func (s *GormStore) ListRatingsRecibidos(ctx context.Context, evaluadoID string) ([]models.Rating, error) {
	var out []models.Rating
	err := s.DB.WithContext(ctx).
		Where("evaluado_id = ?", evaluadoID).
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) SaveNotificacion(ctx context.Context, n *models.Notificacion) error {
	if err := n.Validar(); err != nil {
		return err
	}
	return traducir(s.DB.WithContext(ctx).Save(n).Error)
}

func (s *GormStore) ListNotificaciones(ctx context.Context, usuarioID string, soloNoLeidas bool) ([]models.Notificacion, error) {
	q := s.DB.WithContext(ctx).Where("usuario_id = ?", usuarioID)
	if soloNoLeidas {
		q = q.Where("leida = false")
	}
	var out []models.Notificacion
	err := q.Order("created_at DESC").Limit(100).Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) ListNotificacionesDesde(ctx context.Context, usuarioID string, desde time.Time) ([]models.Notificacion, error) {
	var out []models.Notificacion
	err := s.DB.WithContext(ctx).
		Where("usuario_id = ? AND created_at > ?", usuarioID, desde).
		Order("created_at ASC").
		Find(&out).Error
	return out, traducir(err)
}

func (s *GormStore) MarkNotificacionLeida(ctx context.Context, id, usuarioID string) error {
	res := s.DB.WithContext(ctx).Model(&models.Notificacion{}).
		Where("id = ? AND usuario_id = ?", id, usuarioID).
		Update("leida", true)
	if res.Error != nil {
		return traducir(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConPartido serializes writers of one partido: it opens a transaction and
// takes a FOR UPDATE lock on the partido row before handing a tx-scoped
// Store to fn. A partido that does not exist yet (creation path) simply
// locks nothing; the fresh id cannot race anyone.
func (s *GormStore) ConPartido(ctx context.Context, partidoID string, fn func(Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Partido
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", partidoID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fn(&GormStore{DB: tx})
	})
}
