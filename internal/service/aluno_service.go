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

// AlunoService cobre cadastro de alunos e suas restrições de compra.
// A presença de uma restrição nega a venda do produto (ou do tipo inteiro);
// não existe registro de permissão.
type AlunoService interface {
	Criar(ctx context.Context, req dto.CriarAlunoRequest) (*dto.AlunoResponse, error)
	BuscarPorRA(ctx context.Context, ra string) (*dto.AlunoResponse, error)
	Listar(ctx context.Context, filter dto.AlunoFilter) (*dto.AlunoListResponse, error)
	Atualizar(ctx context.Context, ra string, req dto.AtualizarAlunoRequest) (*dto.AlunoResponse, error)
	Desativar(ctx context.Context, ra string) error
	Reativar(ctx context.Context, ra string) error

	CriarRestricao(ctx context.Context, ra string, req dto.CriarRestricaoRequest) (*dto.RestricaoResponse, error)
	ListarRestricoes(ctx context.Context, ra string) ([]dto.RestricaoResponse, error)
	RemoverRestricao(ctx context.Context, ra string, restricaoID uuid.UUID) error
}

type alunoService struct {
	repo        repository.AlunoRepository
	produtoRepo repository.ProdutoRepository
	tipoRepo    repository.TipoProdutoRepository
}

func NewAlunoService(repo repository.AlunoRepository, produtoRepo repository.ProdutoRepository, tipoRepo repository.TipoProdutoRepository) AlunoService {
	return &alunoService{repo: repo, produtoRepo: produtoRepo, tipoRepo: tipoRepo}
}

func (s *alunoService) Criar(ctx context.Context, req dto.CriarAlunoRequest) (*dto.AlunoResponse, error) {
	a := &model.Aluno{
		RA:               req.RA,
		Nome:             req.Nome,
		EmailResponsavel: req.EmailResponsavel,
		Ativo:            true,
	}
	if req.Serie != "" {
		a.Serie = &req.Serie
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("aluno_duplicado", "Já existe aluno com esse RA")
		}
		return nil, err
	}
	return alunoToResponse(a), nil
}

func (s *alunoService) BuscarPorRA(ctx context.Context, ra string) (*dto.AlunoResponse, error) {
	a, err := s.repo.FindByRA(ctx, ra)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return nil, err
	}
	return alunoToResponse(a), nil
}

func (s *alunoService) Listar(ctx context.Context, filter dto.AlunoFilter) (*dto.AlunoListResponse, error) {
	alunos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AlunoResponse, 0, len(alunos))
	for i := range alunos {
		out = append(out, *alunoToResponse(&alunos[i]))
	}
	return &dto.AlunoListResponse{Data: out, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *alunoService) Atualizar(ctx context.Context, ra string, req dto.AtualizarAlunoRequest) (*dto.AlunoResponse, error) {
	a, err := s.repo.FindByRA(ctx, ra)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return nil, err
	}
	if req.Nome != "" {
		a.Nome = req.Nome
	}
	if req.Serie != nil {
		a.Serie = req.Serie
	}
	if req.EmailResponsavel != nil {
		a.EmailResponsavel = req.EmailResponsavel
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return alunoToResponse(a), nil
}

func (s *alunoService) Desativar(ctx context.Context, ra string) error {
	if _, err := s.repo.FindByRA(ctx, ra); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return err
	}
	if err := s.repo.Desativar(ctx, ra); err != nil {
		return err
	}
	return nil
}

func (s *alunoService) Reativar(ctx context.Context, ra string) error {
	if _, err := s.repo.FindByRA(ctx, ra); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return err
	}
	if err := s.repo.Reativar(ctx, ra); err != nil {
		return err
	}
	return nil
}

func (s *alunoService) CriarRestricao(ctx context.Context, ra string, req dto.CriarRestricaoRequest) (*dto.RestricaoResponse, error) {
	if (req.ProdutoID == nil) == (req.TipoProdutoID == nil) {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Informe produto_id ou tipo_produto_id, nunca ambos")
	}
	if _, err := s.repo.FindByRA(ctx, ra); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return nil, err
	}

	restricao := &model.RestricaoAluno{AlunoRA: ra}
	if req.Motivo != "" {
		restricao.Motivo = &req.Motivo
	}
	if req.ProdutoID != nil {
		produtoID, err := uuid.Parse(*req.ProdutoID)
		if err != nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "produto_id inválido")
		}
		if _, err := s.produtoRepo.FindByID(ctx, produtoID); err != nil {
			return nil, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
		}
		restricao.ProdutoID = &produtoID
	} else {
		tipoID, err := uuid.Parse(*req.TipoProdutoID)
		if err != nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "tipo_produto_id inválido")
		}
		if _, err := s.tipoRepo.FindByID(ctx, tipoID); err != nil {
			return nil, apierror.NotFound("tipo_produto_nao_encontrado", "Tipo de produto não encontrado")
		}
		restricao.TipoProdutoID = &tipoID
	}

	if err := s.repo.CreateRestricao(ctx, restricao); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("restricao_duplicada", "Restrição já cadastrada para o aluno")
		}
		return nil, err
	}
	return restricaoToResponse(restricao), nil
}

func (s *alunoService) ListarRestricoes(ctx context.Context, ra string) ([]dto.RestricaoResponse, error) {
	if _, err := s.repo.FindByRA(ctx, ra); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
		}
		return nil, err
	}
	restricoes, err := s.repo.ListRestricoes(ctx, ra)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RestricaoResponse, 0, len(restricoes))
	for i := range restricoes {
		out = append(out, *restricaoToResponse(&restricoes[i]))
	}
	return out, nil
}

func (s *alunoService) RemoverRestricao(ctx context.Context, ra string, restricaoID uuid.UUID) error {
	restricoes, err := s.repo.ListRestricoes(ctx, ra)
	if err != nil {
		return err
	}
	for i := range restricoes {
		if restricoes[i].ID == restricaoID {
			if err := s.repo.DeleteRestricao(ctx, restricaoID); err != nil {
				return err
			}
			return nil
		}
	}
	return apierror.NotFound("restricao_nao_encontrada", "Restrição não encontrada para o aluno")
}

func alunoToResponse(a *model.Aluno) *dto.AlunoResponse {
	serie := ""
	if a.Serie != nil {
		serie = *a.Serie
	}
	return &dto.AlunoResponse{
		RA:               a.RA,
		Nome:             a.Nome,
		Serie:            serie,
		EmailResponsavel: a.EmailResponsavel,
		Ativo:            a.Ativo,
	}
}

func restricaoToResponse(r *model.RestricaoAluno) *dto.RestricaoResponse {
	resp := &dto.RestricaoResponse{
		ID:        r.ID.String(),
		AlunoRA:   r.AlunoRA,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if r.Motivo != nil {
		resp.Motivo = *r.Motivo
	}
	if r.ProdutoID != nil {
		id := r.ProdutoID.String()
		resp.ProdutoID = &id
		if r.Produto != nil {
			resp.Produto = r.Produto.Nome
		}
	}
	if r.TipoProdutoID != nil {
		id := r.TipoProdutoID.String()
		resp.TipoProdutoID = &id
		if r.TipoProduto != nil {
			resp.TipoProduto = r.TipoProduto.Nome
		}
	}
	return resp
}
