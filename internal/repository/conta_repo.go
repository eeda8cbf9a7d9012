package repository

import (
	"context"
	"time"

	"cantina/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContaRepository is the data access contract for student accounts and their
// immutable movement log. Balance mutations always go through the *Tx
// variants — the service owns the transaction and the row lock.
type ContaRepository interface {
	Create(ctx context.Context, c *model.Conta) error
	CreateTx(tx *gorm.DB, c *model.Conta) error
	FindByRA(ctx context.Context, ra string) (*model.Conta, error)
	// FindByRAForUpdate reads the account row with an exclusive lock held
	// until the enclosing transaction ends (SELECT ... FOR UPDATE).
	FindByRAForUpdate(tx *gorm.DB, ra string) (*model.Conta, error)
	UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error
	SetLimiteDiario(ctx context.Context, id uuid.UUID, limite *decimal.Decimal) error
	Desativar(ctx context.Context, id uuid.UUID) error

	CreateMovimentoTx(tx *gorm.DB, m *model.MovimentoConta) error
	// SumDebitosDoDiaTx soma os débitos da conta desde a meia-noite local —
	// executada dentro da mesma transação que segura o lock da conta.
	SumDebitosDoDiaTx(tx *gorm.DB, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error)
	// SumDebitosDoDia é a variante fora de transação, para leituras consultivas.
	SumDebitosDoDia(ctx context.Context, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error)
	// ListMovimentos pagina os movimentos da conta; tipo vazio traz todos.
	// O filtro roda no banco — Total e as páginas refletem o recorte pedido.
	ListMovimentos(ctx context.Context, contaID uuid.UUID, tipo string, page, limit int) ([]model.MovimentoConta, int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type contaRepo struct{ db *gorm.DB }

func NewContaRepository(db *gorm.DB) ContaRepository { return &contaRepo{db: db} }

func (r *contaRepo) DB() *gorm.DB { return r.db }

func (r *contaRepo) Create(ctx context.Context, c *model.Conta) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contaRepo) CreateTx(tx *gorm.DB, c *model.Conta) error {
	return tx.Create(c).Error
}

func (r *contaRepo) FindByRA(ctx context.Context, ra string) (*model.Conta, error) {
	var c model.Conta
	err := r.db.WithContext(ctx).Where("aluno_ra = ?", ra).First(&c).Error
	return &c, err
}

func (r *contaRepo) FindByRAForUpdate(tx *gorm.DB, ra string) (*model.Conta, error) {
	var c model.Conta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("aluno_ra = ?", ra).First(&c).Error
	return &c, err
}

func (r *contaRepo) UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error {
	return tx.Model(&model.Conta{}).Where("id = ?", id).Update("saldo", saldo).Error
}

func (r *contaRepo) SetLimiteDiario(ctx context.Context, id uuid.UUID, limite *decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Conta{}).Where("id = ?", id).
		Update("limite_diario", limite).Error
}

func (r *contaRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Conta{}).Where("id = ?", id).Update("ativo", false).Error
}

func (r *contaRepo) CreateMovimentoTx(tx *gorm.DB, m *model.MovimentoConta) error {
	return tx.Create(m).Error
}

func (r *contaRepo) SumDebitosDoDiaTx(tx *gorm.DB, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error) {
	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, dia.Location())
	var total decimal.Decimal
	err := tx.Model(&model.MovimentoConta{}).
		Where("conta_id = ? AND tipo = 'debito' AND created_at >= ?", contaID, inicio).
		Select("COALESCE(SUM(valor), 0)").
		Scan(&total).Error
	return total, err
}

func (r *contaRepo) SumDebitosDoDia(ctx context.Context, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error) {
	return r.SumDebitosDoDiaTx(r.db.WithContext(ctx), contaID, dia)
}

func (r *contaRepo) ListMovimentos(ctx context.Context, contaID uuid.UUID, tipo string, page, limit int) ([]model.MovimentoConta, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimentoConta{}).Where("conta_id = ?", contaID)
	if tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var movimentos []model.MovimentoConta
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movimentos).Error
	return movimentos, total, err
}
