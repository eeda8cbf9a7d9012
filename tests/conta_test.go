package tests

import (
	"context"
	"testing"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubAlunoRepo is an in-memory AlunoRepository keyed by RA.
type stubAlunoRepo struct {
	alunos     map[string]*model.Aluno
	restricoes []model.RestricaoAluno
}

func newStubAlunoRepo() *stubAlunoRepo {
	return &stubAlunoRepo{alunos: make(map[string]*model.Aluno)}
}

func (r *stubAlunoRepo) Create(_ context.Context, a *model.Aluno) error {
	if _, ok := r.alunos[a.RA]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.alunos[a.RA] = a
	return nil
}

func (r *stubAlunoRepo) FindByRA(_ context.Context, ra string) (*model.Aluno, error) {
	a, ok := r.alunos[ra]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubAlunoRepo) List(_ context.Context, _ dto.AlunoFilter) ([]model.Aluno, int64, error) {
	out := make([]model.Aluno, 0, len(r.alunos))
	for _, a := range r.alunos {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAlunoRepo) Update(_ context.Context, a *model.Aluno) error {
	r.alunos[a.RA] = a
	return nil
}

func (r *stubAlunoRepo) Desativar(_ context.Context, ra string) error {
	if a, ok := r.alunos[ra]; ok {
		a.Ativo = false
	}
	return nil
}

func (r *stubAlunoRepo) Reativar(_ context.Context, ra string) error {
	if a, ok := r.alunos[ra]; ok {
		a.Ativo = true
	}
	return nil
}

func (r *stubAlunoRepo) CreateRestricao(_ context.Context, restricao *model.RestricaoAluno) error {
	for _, existente := range r.restricoes {
		if existente.AlunoRA != restricao.AlunoRA {
			continue
		}
		if restricao.ProdutoID != nil && existente.ProdutoID != nil && *existente.ProdutoID == *restricao.ProdutoID {
			return gorm.ErrDuplicatedKey
		}
		if restricao.TipoProdutoID != nil && existente.TipoProdutoID != nil && *existente.TipoProdutoID == *restricao.TipoProdutoID {
			return gorm.ErrDuplicatedKey
		}
	}
	if restricao.ID == uuid.Nil {
		restricao.ID = uuid.New()
	}
	restricao.CreatedAt = time.Now()
	r.restricoes = append(r.restricoes, *restricao)
	return nil
}

func (r *stubAlunoRepo) ListRestricoes(_ context.Context, ra string) ([]model.RestricaoAluno, error) {
	var out []model.RestricaoAluno
	for _, restricao := range r.restricoes {
		if restricao.AlunoRA == ra {
			out = append(out, restricao)
		}
	}
	return out, nil
}

func (r *stubAlunoRepo) DeleteRestricao(_ context.Context, id uuid.UUID) error {
	for i := range r.restricoes {
		if r.restricoes[i].ID == id {
			r.restricoes = append(r.restricoes[:i], r.restricoes[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ repository.AlunoRepository = (*stubAlunoRepo)(nil)

// stubContaRepo is an in-memory ContaRepository. The *Tx methods accept a nil
// *gorm.DB — runTx short-circuits to fn(nil) when the repo's DB() is nil.
type stubContaRepo struct {
	contas     map[string]*model.Conta // by aluno RA
	movimentos []model.MovimentoConta
}

func newStubContaRepo() *stubContaRepo {
	return &stubContaRepo{contas: make(map[string]*model.Conta)}
}

func (r *stubContaRepo) DB() *gorm.DB { return nil }

func (r *stubContaRepo) Create(_ context.Context, c *model.Conta) error {
	if _, ok := r.contas[c.AlunoRA]; ok {
		return gorm.ErrDuplicatedKey
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.contas[c.AlunoRA] = c
	return nil
}

func (r *stubContaRepo) CreateTx(_ *gorm.DB, c *model.Conta) error {
	return r.Create(context.Background(), c)
}

func (r *stubContaRepo) FindByRA(_ context.Context, ra string) (*model.Conta, error) {
	c, ok := r.contas[ra]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubContaRepo) FindByRAForUpdate(_ *gorm.DB, ra string) (*model.Conta, error) {
	return r.FindByRA(context.Background(), ra)
}

func (r *stubContaRepo) UpdateSaldoTx(_ *gorm.DB, id uuid.UUID, saldo decimal.Decimal) error {
	for _, c := range r.contas {
		if c.ID == id {
			c.Saldo = saldo
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubContaRepo) SetLimiteDiario(_ context.Context, id uuid.UUID, limite *decimal.Decimal) error {
	for _, c := range r.contas {
		if c.ID == id {
			c.LimiteDiario = limite
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubContaRepo) Desativar(_ context.Context, id uuid.UUID) error {
	for _, c := range r.contas {
		if c.ID == id {
			c.Ativo = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubContaRepo) CreateMovimentoTx(_ *gorm.DB, m *model.MovimentoConta) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentos = append(r.movimentos, *m)
	return nil
}

func (r *stubContaRepo) SumDebitosDoDiaTx(_ *gorm.DB, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error) {
	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, dia.Location())
	total := decimal.Zero
	for _, m := range r.movimentos {
		if m.ContaID == contaID && m.Tipo == "debito" && !m.CreatedAt.Before(inicio) {
			total = total.Add(m.Valor)
		}
	}
	return total, nil
}

func (r *stubContaRepo) SumDebitosDoDia(_ context.Context, contaID uuid.UUID, dia time.Time) (decimal.Decimal, error) {
	return r.SumDebitosDoDiaTx(nil, contaID, dia)
}

func (r *stubContaRepo) ListMovimentos(_ context.Context, contaID uuid.UUID, tipo string, _, _ int) ([]model.MovimentoConta, int64, error) {
	var out []model.MovimentoConta
	for _, m := range r.movimentos {
		if m.ContaID != contaID {
			continue
		}
		if tipo != "" && m.Tipo != tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.ContaRepository = (*stubContaRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedAluno(repo *stubAlunoRepo, ra, nome string) *model.Aluno {
	a := &model.Aluno{RA: ra, Nome: nome, Ativo: true}
	repo.alunos[ra] = a
	return a
}

func seedConta(repo *stubContaRepo, ra string, saldo decimal.Decimal) *model.Conta {
	c := &model.Conta{ID: uuid.New(), AlunoRA: ra, Saldo: saldo, Ativo: true}
	repo.contas[ra] = c
	return c
}

// requireDomainCode asserts err is a DomainError with the given machine code.
func requireDomainCode(t *testing.T, err error, code string) *apierror.DomainError {
	t.Helper()
	var derr *apierror.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, code, derr.Code)
	return derr
}

func buildContaSvc() (service.ContaService, *stubContaRepo, *stubAlunoRepo) {
	contaRepo := newStubContaRepo()
	alunoRepo := newStubAlunoRepo()
	svc := service.NewContaService(contaRepo, alunoRepo, nil, nil, decimal.NewFromInt(10))
	return svc, contaRepo, alunoRepo
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestEnsureConta_CriaZeradaEIdempotente(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	conta, err := svc.EnsureConta(context.Background(), "RA100")
	require.NoError(t, err)
	assert.Equal(t, "0", conta.Saldo.String())
	assert.True(t, conta.Ativo)

	// Segunda chamada devolve a mesma conta, sem criar outra.
	outra, err := svc.EnsureConta(context.Background(), "RA100")
	require.NoError(t, err)
	assert.Equal(t, conta.ID, outra.ID)
	assert.Len(t, contaRepo.contas, 1)
}

func TestEnsureConta_AlunoInexistente(t *testing.T) {
	svc, _, _ := buildContaSvc()

	_, err := svc.EnsureConta(context.Background(), "RA999")
	requireDomainCode(t, err, "aluno_nao_encontrado")
}

func TestEnsureConta_AlunoInativo(t *testing.T) {
	svc, _, alunoRepo := buildContaSvc()
	a := seedAluno(alunoRepo, "RA101", "Bruno Lima")
	a.Ativo = false

	_, err := svc.EnsureConta(context.Background(), "RA101")
	requireDomainCode(t, err, apierror.CodeAlunoInapto)
}

func TestCreditar_AtualizaSaldoERegistraMovimento(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")
	operador := uuid.New()

	resp, err := svc.Creditar(context.Background(), "RA100", dto.CreditarContaRequest{
		Valor:  decimal.NewFromFloat(50),
		Motivo: "Recarga na secretaria",
	}, &operador)
	require.NoError(t, err)
	assert.Equal(t, "50", resp.Saldo.String())

	require.Len(t, contaRepo.movimentos, 1)
	mov := contaRepo.movimentos[0]
	assert.Equal(t, "credito", mov.Tipo)
	assert.Equal(t, "50", mov.Valor.String())
	assert.Equal(t, "Recarga na secretaria", mov.Motivo)
	require.NotNil(t, mov.UsuarioID)
	assert.Equal(t, operador, *mov.UsuarioID)
}

func TestCreditar_ValorZero(t *testing.T) {
	svc, _, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	_, err := svc.Creditar(context.Background(), "RA100", dto.CreditarContaRequest{Valor: decimal.Zero}, nil)
	requireDomainCode(t, err, apierror.CodeValorInvalido)
}

func TestDebitar_SaldoInsuficiente(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")
	seedConta(contaRepo, "RA100", decimal.NewFromInt(5))

	_, err := svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{
		Valor: decimal.NewFromInt(10),
	}, nil)
	derr := requireDomainCode(t, err, apierror.CodeSaldoInsuficiente)
	assert.Equal(t, 422, derr.Status())
	assert.Equal(t, "5", derr.Details["saldo"].(decimal.Decimal).String())
	assert.Equal(t, "5", derr.Details["falta"].(decimal.Decimal).String())

	// Saldo intocado, nenhum movimento gravado.
	assert.Equal(t, "5", contaRepo.contas["RA100"].Saldo.String())
	assert.Empty(t, contaRepo.movimentos)
}

func TestDebitar_LimiteDiarioExcedido(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")
	limite := decimal.NewFromInt(20)
	conta := seedConta(contaRepo, "RA100", decimal.NewFromInt(100))
	conta.LimiteDiario = &limite

	// Primeiro débito dentro do limite.
	_, err := svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{
		Valor: decimal.NewFromInt(15),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "85", conta.Saldo.String())

	// 15 + 10 > 20 — reprovado mesmo com saldo sobrando.
	_, err = svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{
		Valor: decimal.NewFromInt(10),
	}, nil)
	derr := requireDomainCode(t, err, apierror.CodeLimiteDiarioExcedido)
	assert.Equal(t, "5", derr.Details["disponivel"].(decimal.Decimal).String())
	assert.Equal(t, "85", conta.Saldo.String())
}

func TestDebitar_ContaInativa(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")
	conta := seedConta(contaRepo, "RA100", decimal.NewFromInt(30))
	conta.Ativo = false

	_, err := svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{
		Valor: decimal.NewFromInt(5),
	}, nil)
	requireDomainCode(t, err, apierror.CodeContaInativa)
}

func TestDebitar_SemConta(t *testing.T) {
	svc, _, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	_, err := svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{
		Valor: decimal.NewFromInt(5),
	}, nil)
	requireDomainCode(t, err, "conta_nao_encontrada")
}

func TestDefinirLimite_ERemover(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	limite := decimal.NewFromInt(25)
	resp, err := svc.DefinirLimite(context.Background(), "RA100", &limite)
	require.NoError(t, err)
	require.NotNil(t, resp.LimiteDiario)
	assert.Equal(t, "25", resp.LimiteDiario.String())
	require.NotNil(t, contaRepo.contas["RA100"].LimiteDiario)

	// nil remove o teto.
	resp, err = svc.DefinirLimite(context.Background(), "RA100", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.LimiteDiario)
	assert.Nil(t, contaRepo.contas["RA100"].LimiteDiario)
}

func TestDefinirLimite_ValorInvalido(t *testing.T) {
	svc, _, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	negativo := decimal.NewFromInt(-1)
	_, err := svc.DefinirLimite(context.Background(), "RA100", &negativo)
	requireDomainCode(t, err, apierror.CodeValorInvalido)
}

func TestSaldo_AlunoSemContaRespondeZero(t *testing.T) {
	svc, _, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")

	resp, err := svc.Saldo(context.Background(), "RA100")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", resp.Nome)
	assert.Equal(t, "0", resp.Saldo.String())
}

func TestExtrato_FiltraPorTipo(t *testing.T) {
	svc, contaRepo, alunoRepo := buildContaSvc()
	seedAluno(alunoRepo, "RA100", "Ana Souza")
	seedConta(contaRepo, "RA100", decimal.NewFromInt(100))

	_, err := svc.Creditar(context.Background(), "RA100", dto.CreditarContaRequest{Valor: decimal.NewFromInt(20)}, nil)
	require.NoError(t, err)
	_, err = svc.Debitar(context.Background(), "RA100", dto.DebitarContaRequest{Valor: decimal.NewFromInt(7)}, nil)
	require.NoError(t, err)

	extrato, err := svc.Extrato(context.Background(), "RA100", dto.ExtratoFilter{Tipo: "debito"})
	require.NoError(t, err)
	require.Len(t, extrato.Movimentos, 1)
	assert.Equal(t, "debito", extrato.Movimentos[0].Tipo)
	assert.Equal(t, "7", extrato.Movimentos[0].Valor.String())
	assert.Equal(t, "113", extrato.Conta.Saldo.String())
	// Total acompanha o filtro: o crédito não entra na contagem.
	assert.EqualValues(t, 1, extrato.Total)
}
