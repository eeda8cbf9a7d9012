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

// stubCaixaRepo is an in-memory CaixaRepository.
type stubCaixaRepo struct {
	caixas      map[uuid.UUID]*model.Caixa
	aberturas   map[uuid.UUID]*model.AberturaCaixa
	fechamentos map[uuid.UUID]*model.FechamentoCaixa // by abertura ID
}

func newStubCaixaRepo() *stubCaixaRepo {
	return &stubCaixaRepo{
		caixas:      make(map[uuid.UUID]*model.Caixa),
		aberturas:   make(map[uuid.UUID]*model.AberturaCaixa),
		fechamentos: make(map[uuid.UUID]*model.FechamentoCaixa),
	}
}

func (r *stubCaixaRepo) DB() *gorm.DB { return nil }

func (r *stubCaixaRepo) CreateCaixa(_ context.Context, c *model.Caixa) error {
	for _, existente := range r.caixas {
		if existente.Nome == c.Nome {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.caixas[c.ID] = c
	return nil
}

func (r *stubCaixaRepo) FindCaixaByID(_ context.Context, id uuid.UUID) (*model.Caixa, error) {
	c, ok := r.caixas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCaixaRepo) ListCaixas(_ context.Context) ([]model.Caixa, error) {
	var out []model.Caixa
	for _, c := range r.caixas {
		if c.Ativo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCaixaRepo) DesativarCaixa(_ context.Context, id uuid.UUID) error {
	if c, ok := r.caixas[id]; ok {
		c.Ativo = false
	}
	return nil
}

func (r *stubCaixaRepo) CreateAbertura(_ context.Context, a *model.AberturaCaixa) error {
	for _, existente := range r.aberturas {
		if existente.CaixaID == a.CaixaID && existente.Aberta {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.aberturas[a.ID] = a
	return nil
}

func (r *stubCaixaRepo) FindAberturaAtiva(_ context.Context, caixaID uuid.UUID) (*model.AberturaCaixa, error) {
	for _, a := range r.aberturas {
		if a.CaixaID == caixaID && a.Aberta {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCaixaRepo) FindAberturaByID(_ context.Context, id uuid.UUID) (*model.AberturaCaixa, error) {
	a, ok := r.aberturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *stubCaixaRepo) FindAberturaForUpdate(_ *gorm.DB, id uuid.UUID) (*model.AberturaCaixa, error) {
	return r.FindAberturaByID(context.Background(), id)
}

func (r *stubCaixaRepo) FecharAberturaTx(_ *gorm.DB, a *model.AberturaCaixa) error {
	stored, ok := r.aberturas[a.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Aberta = false
	stored.ClosedAt = a.ClosedAt
	return nil
}

func (r *stubCaixaRepo) CreateFechamentoTx(_ *gorm.DB, f *model.FechamentoCaixa) error {
	if _, ok := r.fechamentos[f.AberturaCaixaID]; ok {
		return gorm.ErrDuplicatedKey
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now()
	r.fechamentos[f.AberturaCaixaID] = f
	return nil
}

func (r *stubCaixaRepo) FindFechamentoByAbertura(_ context.Context, aberturaID uuid.UUID) (*model.FechamentoCaixa, error) {
	f, ok := r.fechamentos[aberturaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubCaixaRepo) ListAberturas(_ context.Context, _, _ int) ([]model.AberturaCaixa, int64, error) {
	var out []model.AberturaCaixa
	for _, a := range r.aberturas {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

var _ repository.CaixaRepository = (*stubCaixaRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildCaixaSvc() (service.CaixaService, *stubCaixaRepo, *stubVendaRepo) {
	caixaRepo := newStubCaixaRepo()
	vendaRepo := newStubVendaRepo()
	svc := service.NewCaixaService(caixaRepo, vendaRepo, nil, nil, "")
	return svc, caixaRepo, vendaRepo
}

func seedCaixa(repo *stubCaixaRepo, nome string) *model.Caixa {
	c := &model.Caixa{ID: uuid.New(), Nome: nome, Ativo: true}
	repo.caixas[c.ID] = c
	return c
}

// seedVenda injeta uma venda pronta do operador, dentro da janela da sessão.
func seedVenda(repo *stubVendaRepo, usuarioID uuid.UUID, forma string, total float64, troco float64) {
	v := &model.Venda{
		ID:             uuid.New(),
		TipoCliente:    "avulso",
		UsuarioID:      usuarioID,
		Total:          decimal.NewFromFloat(total),
		FormaPagamento: forma,
		CreatedAt:      time.Now(),
	}
	repo.seq++
	v.Numero = repo.seq
	if forma == "dinheiro" && troco > 0 {
		tr := decimal.NewFromFloat(troco)
		v.Troco = &tr
	}
	repo.vendas[v.ID] = v
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestAbrirCaixa_CriaSessao(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")

	resp, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	assert.True(t, resp.Aberta)
	assert.Equal(t, "100", resp.ValorAbertura.String())
	assert.Nil(t, resp.ClosedAt)
}

func TestAbrirCaixa_SessaoJaAberta(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(50),
	})
	derr := requireDomainCode(t, err, apierror.CodeCaixaJaAberto)
	assert.Equal(t, 409, derr.Status())
}

func TestAbrirCaixa_CaixaInativo(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Quiosque")
	caixa.Ativo = false

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(50),
	})
	requireDomainCode(t, err, "caixa_inativo")
}

func TestAbrirCaixa_ValorNegativo(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")

	_, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(-10),
	})
	requireDomainCode(t, err, apierror.CodeValorInvalido)
}

func TestFecharCaixa_CalculaEsperadoEDiferenca(t *testing.T) {
	svc, caixaRepo, vendaRepo := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")
	operador := uuid.New()

	abertura, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	// Vendas da sessão: 50 em dinheiro (5 de troco) + 30 no cartão.
	seedVenda(vendaRepo, operador, "dinheiro", 50, 5)
	seedVenda(vendaRepo, operador, "cartao", 30, 0)
	// Venda de outro operador não entra na apuração.
	seedVenda(vendaRepo, uuid.New(), "dinheiro", 999, 0)

	fechamento, err := svc.Fechar(context.Background(), operador, uuid.MustParse(abertura.ID), dto.FecharCaixaRequest{
		ValorContado: decimal.NewFromInt(140),
	})
	require.NoError(t, err)

	// esperado = 100 + 50 − 5 = 145; diferença = 140 − 145 = −5
	assert.Equal(t, "145", fechamento.ValorEsperado.String())
	assert.Equal(t, "-5", fechamento.Diferenca.String())
	assert.Equal(t, "80", fechamento.TotalVendas.String())
	assert.Equal(t, "50", fechamento.TotalDinheiro.String())
	assert.Equal(t, "30", fechamento.TotalCartao.String())
	assert.Equal(t, "5", fechamento.TotalTroco.String())

	// Sessão virou fechada com closed_at preenchido.
	stored := caixaRepo.aberturas[uuid.MustParse(abertura.ID)]
	assert.False(t, stored.Aberta)
	assert.NotNil(t, stored.ClosedAt)
}

func TestFecharCaixa_SomenteOperadorQueAbriu(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")
	operador := uuid.New()

	abertura, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), uuid.New(), uuid.MustParse(abertura.ID), dto.FecharCaixaRequest{
		ValorContado: decimal.NewFromInt(100),
	})
	derr := requireDomainCode(t, err, apierror.CodeNaoEOperador)
	assert.Equal(t, 403, derr.Status())
}

func TestFecharCaixa_JaFechado(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")
	operador := uuid.New()

	abertura, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), operador, uuid.MustParse(abertura.ID), dto.FecharCaixaRequest{
		ValorContado: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = svc.Fechar(context.Background(), operador, uuid.MustParse(abertura.ID), dto.FecharCaixaRequest{
		ValorContado: decimal.NewFromInt(100),
	})
	derr := requireDomainCode(t, err, apierror.CodeCaixaJaFechado)
	assert.Equal(t, 409, derr.Status())
}

func TestTotais_SessaoAberta(t *testing.T) {
	svc, caixaRepo, vendaRepo := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")
	operador := uuid.New()

	abertura, err := svc.Abrir(context.Background(), operador, dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	seedVenda(vendaRepo, operador, "pix", 12, 0)

	totais, err := svc.Totais(context.Background(), uuid.MustParse(abertura.ID))
	require.NoError(t, err)
	assert.Equal(t, "12", totais.TotalPix.String())
	assert.Equal(t, "20", totais.ValorEsperado.String()) // pix não passa pela gaveta
}

func TestBuscarFechamento_SessaoAindaAberta(t *testing.T) {
	svc, caixaRepo, _ := buildCaixaSvc()
	caixa := seedCaixa(caixaRepo, "Balcão principal")

	abertura, err := svc.Abrir(context.Background(), uuid.New(), dto.AbrirCaixaRequest{
		CaixaID:       caixa.ID.String(),
		ValorAbertura: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	_, err = svc.BuscarFechamento(context.Background(), uuid.MustParse(abertura.ID))
	requireDomainCode(t, err, "fechamento_nao_encontrado")
}

func TestCriarCaixa_NomeDuplicado(t *testing.T) {
	svc, _, _ := buildCaixaSvc()

	_, err := svc.CriarCaixa(context.Background(), dto.CriarCaixaRequest{Nome: "Balcão principal"})
	require.NoError(t, err)

	_, err = svc.CriarCaixa(context.Background(), dto.CriarCaixaRequest{Nome: "Balcão principal"})
	requireDomainCode(t, err, "caixa_duplicado")
}
