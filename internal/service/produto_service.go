package service

import (
	"context"
	"errors"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProdutoService is the product catalog. Stock never changes through here —
// that is EstoqueService territory.
type ProdutoService interface {
	Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	BuscarPorCodigoBarras(ctx context.Context, codigo string) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	Reativar(ctx context.Context, id uuid.UUID) error

	CriarTipo(ctx context.Context, req dto.CriarTipoProdutoRequest) (*dto.TipoProdutoResponse, error)
	ListarTipos(ctx context.Context) ([]dto.TipoProdutoResponse, error)
	DesativarTipo(ctx context.Context, id uuid.UUID) error
}

type produtoService struct {
	repo     repository.ProdutoRepository
	tipoRepo repository.TipoProdutoRepository
}

func NewProdutoService(repo repository.ProdutoRepository, tipoRepo repository.TipoProdutoRepository) ProdutoService {
	return &produtoService{repo: repo, tipoRepo: tipoRepo}
}

func (s *produtoService) Criar(ctx context.Context, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	tipoID, err := uuid.Parse(req.TipoProdutoID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "tipo_produto_id inválido")
	}
	if _, err := s.tipoRepo.FindByID(ctx, tipoID); err != nil {
		return nil, apierror.NotFound("tipo_produto_nao_encontrado", "Tipo de produto não encontrado")
	}
	if !req.PrecoVenda.IsPositive() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Preço de venda deve ser maior que zero")
	}

	var descricao *string
	if req.Descricao != "" {
		descricao = &req.Descricao
	}
	p := &model.Produto{
		CodigoBarras:  req.CodigoBarras,
		Nome:          req.Nome,
		Descricao:     descricao,
		TipoProdutoID: &tipoID,
		PrecoVenda:    req.PrecoVenda,
		EstoqueMinimo: req.EstoqueMinimo,
		Ativo:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("codigo_barras_duplicado", "Código de barras já cadastrado")
		}
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) BuscarPorCodigoBarras(ctx context.Context, codigo string) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, codigo)
	if err != nil {
		return nil, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProdutoResponse, 0, len(produtos))
	for _, p := range produtos {
		items = append(items, *produtoToResponse(&p))
	}
	return &dto.ProdutoListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
	}

	if req.CodigoBarras != nil {
		p.CodigoBarras = req.CodigoBarras
	}
	if req.Nome != "" {
		p.Nome = req.Nome
	}
	if req.Descricao != nil {
		p.Descricao = req.Descricao
	}
	if req.TipoProdutoID != "" {
		tipoID, err := uuid.Parse(req.TipoProdutoID)
		if err != nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "tipo_produto_id inválido")
		}
		if _, err := s.tipoRepo.FindByID(ctx, tipoID); err != nil {
			return nil, apierror.NotFound("tipo_produto_nao_encontrado", "Tipo de produto não encontrado")
		}
		p.TipoProdutoID = &tipoID
	}
	if req.PrecoVenda != nil {
		if !req.PrecoVenda.IsPositive() {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "Preço de venda deve ser maior que zero")
		}
		p.PrecoVenda = *req.PrecoVenda
	}
	if req.EstoqueMinimo != nil {
		p.EstoqueMinimo = *req.EstoqueMinimo
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("codigo_barras_duplicado", "Código de barras já cadastrado")
		}
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
	}
	return s.repo.Desativar(ctx, id)
}

func (s *produtoService) Reativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
	}
	return s.repo.Reativar(ctx, id)
}

func (s *produtoService) CriarTipo(ctx context.Context, req dto.CriarTipoProdutoRequest) (*dto.TipoProdutoResponse, error) {
	var descricao *string
	if req.Descricao != "" {
		descricao = &req.Descricao
	}
	t := &model.TipoProduto{Nome: req.Nome, Descricao: descricao, Ativo: true}
	if err := s.tipoRepo.Create(ctx, t); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("tipo_produto_duplicado", "Já existe um tipo com esse nome")
		}
		return nil, err
	}
	return tipoToResponse(t), nil
}

func (s *produtoService) ListarTipos(ctx context.Context) ([]dto.TipoProdutoResponse, error) {
	tipos, err := s.tipoRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.TipoProdutoResponse, 0, len(tipos))
	for _, t := range tipos {
		resp = append(resp, *tipoToResponse(&t))
	}
	return resp, nil
}

func (s *produtoService) DesativarTipo(ctx context.Context, id uuid.UUID) error {
	if _, err := s.tipoRepo.FindByID(ctx, id); err != nil {
		return apierror.NotFound("tipo_produto_nao_encontrado", "Tipo de produto não encontrado")
	}
	return s.tipoRepo.Desativar(ctx, id)
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	tipoNome := ""
	if p.TipoProduto != nil {
		tipoNome = p.TipoProduto.Nome
	}
	descricao := ""
	if p.Descricao != nil {
		descricao = *p.Descricao
	}
	tipoID := ""
	if p.TipoProdutoID != nil {
		tipoID = p.TipoProdutoID.String()
	}
	return &dto.ProdutoResponse{
		ID:            p.ID.String(),
		CodigoBarras:  p.CodigoBarras,
		Nome:          p.Nome,
		Descricao:     descricao,
		TipoProdutoID: tipoID,
		TipoProduto:   tipoNome,
		PrecoVenda:    p.PrecoVenda,
		EstoqueAtual:  p.EstoqueAtual,
		EstoqueMinimo: p.EstoqueMinimo,
		Ativo:         p.Ativo,
	}
}

func tipoToResponse(t *model.TipoProduto) *dto.TipoProdutoResponse {
	descricao := ""
	if t.Descricao != nil {
		descricao = *t.Descricao
	}
	return &dto.TipoProdutoResponse{
		ID:        t.ID.String(),
		Nome:      t.Nome,
		Descricao: descricao,
		Ativo:     t.Ativo,
	}
}
