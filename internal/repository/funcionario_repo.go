package repository

import (
	"context"

	"cantina/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FuncionarioRepository interface {
	Create(ctx context.Context, f *model.Funcionario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Funcionario, error)
	List(ctx context.Context) ([]model.Funcionario, error)
	Update(ctx context.Context, f *model.Funcionario) error
	Desativar(ctx context.Context, id uuid.UUID) error

	// EnsureContaMes garante a conta mensal do funcionário (criada sob
	// demanda). Idempotente: corrida de criação resolve pela unique
	// (funcionario_id, mes) com releitura.
	EnsureContaMes(ctx context.Context, funcionarioID uuid.UUID, mes string) (*model.ContaFuncionario, error)
	EnsureContaMesTx(tx *gorm.DB, funcionarioID uuid.UUID, mes string) (*model.ContaFuncionario, error)
	// AcumularTx soma valor ao total da conta mensal, sob lock de linha.
	AcumularTx(tx *gorm.DB, contaID uuid.UUID, valor decimal.Decimal) error
	ListContasMes(ctx context.Context, mes string) ([]model.ContaFuncionario, error)
}

type funcionarioRepo struct{ db *gorm.DB }

func NewFuncionarioRepository(db *gorm.DB) FuncionarioRepository { return &funcionarioRepo{db: db} }

func (r *funcionarioRepo) Create(ctx context.Context, f *model.Funcionario) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *funcionarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Funcionario, error) {
	var f model.Funcionario
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *funcionarioRepo) List(ctx context.Context) ([]model.Funcionario, error) {
	var funcionarios []model.Funcionario
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&funcionarios).Error
	return funcionarios, err
}

func (r *funcionarioRepo) Update(ctx context.Context, f *model.Funcionario) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *funcionarioRepo) Desativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Funcionario{}).Where("id = ?", id).Update("ativo", false).Error
}

func (r *funcionarioRepo) EnsureContaMes(ctx context.Context, funcionarioID uuid.UUID, mes string) (*model.ContaFuncionario, error) {
	return r.EnsureContaMesTx(r.db.WithContext(ctx), funcionarioID, mes)
}

func (r *funcionarioRepo) EnsureContaMesTx(tx *gorm.DB, funcionarioID uuid.UUID, mes string) (*model.ContaFuncionario, error) {
	conta := model.ContaFuncionario{FuncionarioID: funcionarioID, Mes: mes}
	err := tx.Where("funcionario_id = ? AND mes = ?", funcionarioID, mes).FirstOrCreate(&conta).Error
	if err != nil {
		return nil, err
	}
	return &conta, nil
}

func (r *funcionarioRepo) AcumularTx(tx *gorm.DB, contaID uuid.UUID, valor decimal.Decimal) error {
	var conta model.ContaFuncionario
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&conta, "id = ?", contaID).Error; err != nil {
		return err
	}
	return tx.Model(&model.ContaFuncionario{}).Where("id = ?", contaID).
		Update("total", conta.Total.Add(valor)).Error
}

func (r *funcionarioRepo) ListContasMes(ctx context.Context, mes string) ([]model.ContaFuncionario, error) {
	var contas []model.ContaFuncionario
	err := r.db.WithContext(ctx).Preload("Funcionario").Where("mes = ?", mes).Find(&contas).Error
	return contas, err
}
