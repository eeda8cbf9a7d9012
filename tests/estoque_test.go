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

// stubProdutoRepo is an in-memory ProdutoRepository.
type stubProdutoRepo struct {
	produtos map[uuid.UUID]*model.Produto
}

func newStubProdutoRepo() *stubProdutoRepo {
	return &stubProdutoRepo{produtos: make(map[uuid.UUID]*model.Produto)}
}

func (r *stubProdutoRepo) DB() *gorm.DB { return nil }

func (r *stubProdutoRepo) Create(_ context.Context, p *model.Produto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.produtos[p.ID] = p
	return nil
}

func (r *stubProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Produto, error) {
	p, ok := r.produtos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProdutoRepo) FindByBarcode(_ context.Context, barcode string) (*model.Produto, error) {
	for _, p := range r.produtos {
		if p.CodigoBarras != nil && *p.CodigoBarras == barcode && p.Ativo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProdutoRepo) List(_ context.Context, _ dto.ProdutoFilter) ([]model.Produto, int64, error) {
	out := make([]model.Produto, 0, len(r.produtos))
	for _, p := range r.produtos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProdutoRepo) ListEstoqueBaixo(_ context.Context) ([]model.Produto, error) {
	var out []model.Produto
	for _, p := range r.produtos {
		if p.Ativo && p.EstoqueAtual <= p.EstoqueMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProdutoRepo) Update(_ context.Context, p *model.Produto) error {
	r.produtos[p.ID] = p
	return nil
}

func (r *stubProdutoRepo) Desativar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.produtos[id]; ok {
		p.Ativo = false
	}
	return nil
}

func (r *stubProdutoRepo) Reativar(_ context.Context, id uuid.UUID) error {
	if p, ok := r.produtos[id]; ok {
		p.Ativo = true
	}
	return nil
}

func (r *stubProdutoRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Produto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProdutoRepo) UpdateEstoqueTx(_ *gorm.DB, id uuid.UUID, estoque int) error {
	p, ok := r.produtos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.EstoqueAtual = estoque
	return nil
}

var _ repository.ProdutoRepository = (*stubProdutoRepo)(nil)

// stubMovimentoEstoqueRepo records movements append-only.
type stubMovimentoEstoqueRepo struct {
	movimentos []model.MovimentoEstoque
}

func (r *stubMovimentoEstoqueRepo) CreateTx(_ *gorm.DB, m *model.MovimentoEstoque) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimentos = append(r.movimentos, *m)
	return nil
}

func (r *stubMovimentoEstoqueRepo) List(_ context.Context, filter dto.MovimentoEstoqueFilter) ([]model.MovimentoEstoque, int64, error) {
	var out []model.MovimentoEstoque
	for _, m := range r.movimentos {
		if filter.ProdutoID != "" && m.ProdutoID.String() != filter.ProdutoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimentoEstoqueRepository = (*stubMovimentoEstoqueRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedProduto(repo *stubProdutoRepo, nome string, preco float64, estoque, minimo int) *model.Produto {
	p := &model.Produto{
		ID:            uuid.New(),
		Nome:          nome,
		PrecoVenda:    decimal.NewFromFloat(preco),
		EstoqueAtual:  estoque,
		EstoqueMinimo: minimo,
		Ativo:         true,
	}
	repo.produtos[p.ID] = p
	return p
}

func buildEstoqueSvc() (service.EstoqueService, *stubProdutoRepo, *stubMovimentoEstoqueRepo) {
	produtoRepo := newStubProdutoRepo()
	movRepo := &stubMovimentoEstoqueRepo{}
	return service.NewEstoqueService(produtoRepo, movRepo), produtoRepo, movRepo
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegistrarEntrada_AtualizaEstoqueComSnapshots(t *testing.T) {
	svc, produtoRepo, movRepo := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Suco de laranja 300ml", 4.50, 8, 5)
	operador := uuid.New()

	resp, err := svc.RegistrarEntrada(context.Background(), dto.EntradaEstoqueRequest{
		ProdutoID:  p.ID.String(),
		Quantidade: 12,
		Motivo:     "Reposição do fornecedor",
	}, &operador)
	require.NoError(t, err)
	assert.Equal(t, 8, resp.EstoqueAnterior)
	assert.Equal(t, 20, resp.EstoqueNovo)
	assert.Equal(t, 20, produtoRepo.produtos[p.ID].EstoqueAtual)

	require.Len(t, movRepo.movimentos, 1)
	mov := movRepo.movimentos[0]
	assert.Equal(t, "entrada", mov.Tipo)
	assert.Equal(t, 12, mov.Quantidade)
	require.NotNil(t, mov.UsuarioID)
	assert.Equal(t, operador, *mov.UsuarioID)
}

func TestRegistrarEntrada_ProdutoInexistente(t *testing.T) {
	svc, _, _ := buildEstoqueSvc()

	_, err := svc.RegistrarEntrada(context.Background(), dto.EntradaEstoqueRequest{
		ProdutoID:  uuid.NewString(),
		Quantidade: 5,
	}, nil)
	requireDomainCode(t, err, apierror.CodeProdutoNaoEncontrado)
}

func TestRegistrarAjuste_NegativoDentroDoEstoque(t *testing.T) {
	svc, produtoRepo, movRepo := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Coxinha", 6.00, 10, 3)

	resp, err := svc.RegistrarAjuste(context.Background(), dto.AjusteEstoqueRequest{
		ProdutoID:  p.ID.String(),
		Quantidade: -4,
		Motivo:     "Perda por validade",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ajuste", resp.Tipo)
	assert.Equal(t, -4, resp.Quantidade)
	assert.Equal(t, 6, produtoRepo.produtos[p.ID].EstoqueAtual)
	assert.Equal(t, "Perda por validade", movRepo.movimentos[0].Motivo)
}

func TestRegistrarAjuste_NaoDeixaEstoqueNegativo(t *testing.T) {
	svc, produtoRepo, movRepo := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Coxinha", 6.00, 3, 3)

	_, err := svc.RegistrarAjuste(context.Background(), dto.AjusteEstoqueRequest{
		ProdutoID:  p.ID.String(),
		Quantidade: -5,
		Motivo:     "Contagem errada",
	}, nil)
	requireDomainCode(t, err, apierror.CodeEstoqueNegativo)

	assert.Equal(t, 3, produtoRepo.produtos[p.ID].EstoqueAtual)
	assert.Empty(t, movRepo.movimentos)
}

func TestRegistrarAjuste_QuantidadeZero(t *testing.T) {
	svc, produtoRepo, _ := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Coxinha", 6.00, 3, 3)

	_, err := svc.RegistrarAjuste(context.Background(), dto.AjusteEstoqueRequest{
		ProdutoID:  p.ID.String(),
		Quantidade: 0,
		Motivo:     "Nada",
	}, nil)
	requireDomainCode(t, err, apierror.CodeValorInvalido)
}

func TestRegistrarSaidaTx_EstoqueInsuficiente(t *testing.T) {
	svc, produtoRepo, _ := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Refrigerante lata", 5.00, 2, 1)

	_, err := svc.RegistrarSaidaTx(nil, p.ID, 5, nil, nil)
	derr := requireDomainCode(t, err, apierror.CodeEstoqueInsuficiente)
	assert.Equal(t, 2, derr.Details["estoque_atual"])
	assert.Equal(t, 5, derr.Details["solicitado"])
	assert.Equal(t, 2, produtoRepo.produtos[p.ID].EstoqueAtual)
}

func TestRegistrarSaidaTx_MotivoReferenciaVenda(t *testing.T) {
	svc, produtoRepo, movRepo := buildEstoqueSvc()
	p := seedProduto(produtoRepo, "Refrigerante lata", 5.00, 10, 1)
	vendaID := uuid.New()

	mov, err := svc.RegistrarSaidaTx(nil, p.ID, 3, &vendaID, nil)
	require.NoError(t, err)
	assert.Equal(t, -3, mov.Quantidade)
	assert.Equal(t, 7, mov.EstoqueNovo)
	assert.Contains(t, mov.Motivo, vendaID.String())
	require.NotNil(t, movRepo.movimentos[0].VendaID)
	assert.Equal(t, vendaID, *movRepo.movimentos[0].VendaID)
}

func TestHistorico_FiltraPorProdutoETipo(t *testing.T) {
	svc, produtoRepo, _ := buildEstoqueSvc()
	p1 := seedProduto(produtoRepo, "Coxinha", 6.00, 10, 3)
	p2 := seedProduto(produtoRepo, "Suco", 4.00, 10, 3)

	_, err := svc.RegistrarEntrada(context.Background(), dto.EntradaEstoqueRequest{ProdutoID: p1.ID.String(), Quantidade: 5}, nil)
	require.NoError(t, err)
	_, err = svc.RegistrarAjuste(context.Background(), dto.AjusteEstoqueRequest{ProdutoID: p2.ID.String(), Quantidade: -2, Motivo: "Perda"}, nil)
	require.NoError(t, err)

	hist, err := svc.Historico(context.Background(), dto.MovimentoEstoqueFilter{ProdutoID: p1.ID.String()})
	require.NoError(t, err)
	require.Len(t, hist.Data, 1)
	assert.Equal(t, "entrada", hist.Data[0].Tipo)
}

func TestAlertas_ListaEstoqueBaixo(t *testing.T) {
	svc, produtoRepo, _ := buildEstoqueSvc()
	seedProduto(produtoRepo, "Coxinha", 6.00, 2, 5) // abaixo do mínimo
	seedProduto(produtoRepo, "Suco", 4.00, 50, 5)   // ok
	inativo := seedProduto(produtoRepo, "Pastel", 7.00, 0, 5)
	inativo.Ativo = false

	alertas, err := svc.Alertas(context.Background())
	require.NoError(t, err)
	require.Len(t, alertas, 1)
	assert.Equal(t, "Coxinha", alertas[0].Nome)
	assert.Equal(t, 2, alertas[0].EstoqueAtual)
}
