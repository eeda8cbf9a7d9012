package tests

import (
	"context"
	"testing"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubTipoProdutoRepo is an in-memory TipoProdutoRepository.
type stubTipoProdutoRepo struct {
	tipos map[uuid.UUID]*model.TipoProduto
}

func newStubTipoProdutoRepo() *stubTipoProdutoRepo {
	return &stubTipoProdutoRepo{tipos: make(map[uuid.UUID]*model.TipoProduto)}
}

func (r *stubTipoProdutoRepo) Create(_ context.Context, tp *model.TipoProduto) error {
	if tp.ID == uuid.Nil {
		tp.ID = uuid.New()
	}
	r.tipos[tp.ID] = tp
	return nil
}

func (r *stubTipoProdutoRepo) List(_ context.Context) ([]model.TipoProduto, error) {
	out := make([]model.TipoProduto, 0, len(r.tipos))
	for _, tp := range r.tipos {
		out = append(out, *tp)
	}
	return out, nil
}

func (r *stubTipoProdutoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TipoProduto, error) {
	tp, ok := r.tipos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tp, nil
}

func (r *stubTipoProdutoRepo) Update(_ context.Context, tp *model.TipoProduto) error {
	r.tipos[tp.ID] = tp
	return nil
}

func (r *stubTipoProdutoRepo) Desativar(_ context.Context, id uuid.UUID) error {
	if tp, ok := r.tipos[id]; ok {
		tp.Ativo = false
	}
	return nil
}

var _ repository.TipoProdutoRepository = (*stubTipoProdutoRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildAlunoSvc() (service.AlunoService, *stubAlunoRepo, *stubProdutoRepo, *stubTipoProdutoRepo) {
	alunoRepo := newStubAlunoRepo()
	produtoRepo := newStubProdutoRepo()
	tipoRepo := newStubTipoProdutoRepo()
	svc := service.NewAlunoService(alunoRepo, produtoRepo, tipoRepo)
	return svc, alunoRepo, produtoRepo, tipoRepo
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCriarAluno_OK(t *testing.T) {
	svc, alunoRepo, _, _ := buildAlunoSvc()

	resp, err := svc.Criar(context.Background(), dto.CriarAlunoRequest{
		RA:    "RA300",
		Nome:  "Diego Nunes",
		Serie: "7B",
	})
	require.NoError(t, err)
	assert.Equal(t, "RA300", resp.RA)
	assert.Equal(t, "7B", resp.Serie)
	assert.True(t, resp.Ativo)
	assert.Contains(t, alunoRepo.alunos, "RA300")
}

func TestCriarAluno_RADuplicado(t *testing.T) {
	svc, alunoRepo, _, _ := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")

	_, err := svc.Criar(context.Background(), dto.CriarAlunoRequest{RA: "RA300", Nome: "Outro Diego"})
	requireDomainCode(t, err, "aluno_duplicado")
}

func TestCriarRestricao_ExigeExatamenteUmAlvo(t *testing.T) {
	svc, alunoRepo, produtoRepo, tipoRepo := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")
	p := seedProduto(produtoRepo, "Refrigerante", 5.00, 10, 2)
	tipo := &model.TipoProduto{ID: uuid.New(), Nome: "Doces", Ativo: true}
	tipoRepo.tipos[tipo.ID] = tipo

	pid := p.ID.String()
	tid := tipo.ID.String()

	// Ambos ao mesmo tempo.
	_, err := svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{
		ProdutoID:     &pid,
		TipoProdutoID: &tid,
	})
	requireDomainCode(t, err, apierror.CodeValorInvalido)

	// Nenhum dos dois.
	_, err = svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{})
	requireDomainCode(t, err, apierror.CodeValorInvalido)
}

func TestCriarRestricao_PorProduto(t *testing.T) {
	svc, alunoRepo, produtoRepo, _ := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")
	p := seedProduto(produtoRepo, "Refrigerante", 5.00, 10, 2)
	pid := p.ID.String()

	resp, err := svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{
		ProdutoID: &pid,
		Motivo:    "Pedido dos pais",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ProdutoID)
	assert.Equal(t, pid, *resp.ProdutoID)
	assert.Equal(t, "Pedido dos pais", resp.Motivo)

	// Duplicar o mesmo alvo é rejeitado.
	_, err = svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{ProdutoID: &pid})
	requireDomainCode(t, err, "restricao_duplicada")
}

func TestCriarRestricao_ProdutoInexistente(t *testing.T) {
	svc, alunoRepo, _, _ := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")
	pid := uuid.NewString()

	_, err := svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{ProdutoID: &pid})
	requireDomainCode(t, err, apierror.CodeProdutoNaoEncontrado)
}

func TestRemoverRestricao_DeOutroAluno(t *testing.T) {
	svc, alunoRepo, produtoRepo, _ := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")
	seedAluno(alunoRepo, "RA301", "Elisa Prado")
	p := seedProduto(produtoRepo, "Refrigerante", 5.00, 10, 2)
	pid := p.ID.String()

	criada, err := svc.CriarRestricao(context.Background(), "RA300", dto.CriarRestricaoRequest{ProdutoID: &pid})
	require.NoError(t, err)

	// O id existe, mas pertence ao RA300 — para o RA301 é como se não existisse.
	err = svc.RemoverRestricao(context.Background(), "RA301", uuid.MustParse(criada.ID))
	requireDomainCode(t, err, "restricao_nao_encontrada")

	err = svc.RemoverRestricao(context.Background(), "RA300", uuid.MustParse(criada.ID))
	require.NoError(t, err)
	restricoes, _ := svc.ListarRestricoes(context.Background(), "RA300")
	assert.Empty(t, restricoes)
}

func TestDesativarAluno_BloqueiaNovaConta(t *testing.T) {
	svc, alunoRepo, _, _ := buildAlunoSvc()
	seedAluno(alunoRepo, "RA300", "Diego Nunes")

	require.NoError(t, svc.Desativar(context.Background(), "RA300"))
	assert.False(t, alunoRepo.alunos["RA300"].Ativo)

	require.NoError(t, svc.Reativar(context.Background(), "RA300"))
	assert.True(t, alunoRepo.alunos["RA300"].Ativo)
}
