package repository

import (
	"context"

	"cantina/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaixaRepository interface {
	CreateCaixa(ctx context.Context, c *model.Caixa) error
	FindCaixaByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error)
	ListCaixas(ctx context.Context) ([]model.Caixa, error)
	DesativarCaixa(ctx context.Context, id uuid.UUID) error

	CreateAbertura(ctx context.Context, a *model.AberturaCaixa) error
	// FindAberturaAtiva devolve a abertura sem fechamento do caixa, se houver.
	FindAberturaAtiva(ctx context.Context, caixaID uuid.UUID) (*model.AberturaCaixa, error)
	FindAberturaByID(ctx context.Context, id uuid.UUID) (*model.AberturaCaixa, error)
	// FindAberturaForUpdate segura o lock da abertura até o fim da transação —
	// serializa fechamentos concorrentes da mesma sessão.
	FindAberturaForUpdate(tx *gorm.DB, id uuid.UUID) (*model.AberturaCaixa, error)
	FecharAberturaTx(tx *gorm.DB, a *model.AberturaCaixa) error

	CreateFechamentoTx(tx *gorm.DB, f *model.FechamentoCaixa) error
	FindFechamentoByAbertura(ctx context.Context, aberturaID uuid.UUID) (*model.FechamentoCaixa, error)
	ListAberturas(ctx context.Context, page, limit int) ([]model.AberturaCaixa, int64, error)

	DB() *gorm.DB
}

type caixaRepo struct{ db *gorm.DB }

func NewCaixaRepository(db *gorm.DB) CaixaRepository { return &caixaRepo{db: db} }

func (r *caixaRepo) DB() *gorm.DB { return r.db }

func (r *caixaRepo) CreateCaixa(ctx context.Context, c *model.Caixa) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *caixaRepo) FindCaixaByID(ctx context.Context, id uuid.UUID) (*model.Caixa, error) {
	var c model.Caixa
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *caixaRepo) ListCaixas(ctx context.Context) ([]model.Caixa, error) {
	var caixas []model.Caixa
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&caixas).Error
	return caixas, err
}

func (r *caixaRepo) DesativarCaixa(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Caixa{}).Where("id = ?", id).Update("ativo", false).Error
}

func (r *caixaRepo) CreateAbertura(ctx context.Context, a *model.AberturaCaixa) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *caixaRepo) FindAberturaAtiva(ctx context.Context, caixaID uuid.UUID) (*model.AberturaCaixa, error) {
	var a model.AberturaCaixa
	err := r.db.WithContext(ctx).
		Where("caixa_id = ? AND aberta = true", caixaID).
		First(&a).Error
	return &a, err
}

func (r *caixaRepo) FindAberturaByID(ctx context.Context, id uuid.UUID) (*model.AberturaCaixa, error) {
	var a model.AberturaCaixa
	err := r.db.WithContext(ctx).Preload("Caixa").First(&a, "id = ?", id).Error
	return &a, err
}

func (r *caixaRepo) FindAberturaForUpdate(tx *gorm.DB, id uuid.UUID) (*model.AberturaCaixa, error) {
	var a model.AberturaCaixa
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *caixaRepo) FecharAberturaTx(tx *gorm.DB, a *model.AberturaCaixa) error {
	return tx.Model(&model.AberturaCaixa{}).Where("id = ?", a.ID).
		Updates(map[string]interface{}{"aberta": false, "closed_at": a.ClosedAt}).Error
}

func (r *caixaRepo) CreateFechamentoTx(tx *gorm.DB, f *model.FechamentoCaixa) error {
	return tx.Create(f).Error
}

func (r *caixaRepo) FindFechamentoByAbertura(ctx context.Context, aberturaID uuid.UUID) (*model.FechamentoCaixa, error) {
	var f model.FechamentoCaixa
	err := r.db.WithContext(ctx).Where("abertura_caixa_id = ?", aberturaID).First(&f).Error
	return &f, err
}

func (r *caixaRepo) ListAberturas(ctx context.Context, page, limit int) ([]model.AberturaCaixa, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.AberturaCaixa{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var aberturas []model.AberturaCaixa
	err := q.Preload("Caixa").Order("opened_at DESC").Offset(offset).Limit(limit).Find(&aberturas).Error
	return aberturas, total, err
}
