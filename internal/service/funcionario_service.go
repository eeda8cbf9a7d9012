package service

import (
	"context"
	"errors"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FuncionarioService cobre o cadastro de funcionários e o convênio mensal:
// compras na forma "convenio" acumulam na conta do mês corrente (YYYY-MM)
// para desconto em folha — nunca há débito de saldo.
type FuncionarioService interface {
	Criar(ctx context.Context, req dto.CriarFuncionarioRequest) (*dto.FuncionarioResponse, error)
	BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.FuncionarioResponse, error)
	Listar(ctx context.Context) ([]dto.FuncionarioResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	ContaDoMes(ctx context.Context, id uuid.UUID, mes string) (*dto.ContaFuncionarioResponse, error)
	ListarContasMes(ctx context.Context, filter dto.ContaFuncionarioFilter) ([]dto.ContaFuncionarioResponse, error)
}

type funcionarioService struct {
	repo repository.FuncionarioRepository
}

func NewFuncionarioService(repo repository.FuncionarioRepository) FuncionarioService {
	return &funcionarioService{repo: repo}
}

func (s *funcionarioService) Criar(ctx context.Context, req dto.CriarFuncionarioRequest) (*dto.FuncionarioResponse, error) {
	f := &model.Funcionario{Nome: req.Nome, Email: req.Email, Ativo: true}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return funcionarioToResponse(f), nil
}

func (s *funcionarioService) BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.FuncionarioResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("funcionario_nao_encontrado", "Funcionário não encontrado")
		}
		return nil, err
	}
	return funcionarioToResponse(f), nil
}

func (s *funcionarioService) Listar(ctx context.Context) ([]dto.FuncionarioResponse, error) {
	funcionarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FuncionarioResponse, 0, len(funcionarios))
	for i := range funcionarios {
		out = append(out, *funcionarioToResponse(&funcionarios[i]))
	}
	return out, nil
}

func (s *funcionarioService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("funcionario_nao_encontrado", "Funcionário não encontrado")
		}
		return err
	}
	if err := s.repo.Desativar(ctx, id); err != nil {
		return err
	}
	return nil
}

// ContaDoMes cria a conta sob demanda: consultar um mês sem compras
// devolve total zero, nunca 404.
func (s *funcionarioService) ContaDoMes(ctx context.Context, id uuid.UUID, mes string) (*dto.ContaFuncionarioResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("funcionario_nao_encontrado", "Funcionário não encontrado")
		}
		return nil, err
	}
	if mes == "" {
		mes = time.Now().Format("2006-01")
	}
	conta, err := s.repo.EnsureContaMes(ctx, id, mes)
	if err != nil {
		return nil, err
	}
	resp := contaFuncionarioToResponse(conta)
	resp.Funcionario = f.Nome
	return resp, nil
}

func (s *funcionarioService) ListarContasMes(ctx context.Context, filter dto.ContaFuncionarioFilter) ([]dto.ContaFuncionarioResponse, error) {
	mes := filter.Mes
	if mes == "" {
		mes = time.Now().Format("2006-01")
	}
	contas, err := s.repo.ListContasMes(ctx, mes)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContaFuncionarioResponse, 0, len(contas))
	for i := range contas {
		resp := contaFuncionarioToResponse(&contas[i])
		if contas[i].Funcionario != nil {
			resp.Funcionario = contas[i].Funcionario.Nome
		}
		out = append(out, *resp)
	}
	return out, nil
}

func funcionarioToResponse(f *model.Funcionario) *dto.FuncionarioResponse {
	return &dto.FuncionarioResponse{
		ID:    f.ID.String(),
		Nome:  f.Nome,
		Email: f.Email,
		Ativo: f.Ativo,
	}
}

func contaFuncionarioToResponse(c *model.ContaFuncionario) *dto.ContaFuncionarioResponse {
	return &dto.ContaFuncionarioResponse{
		ID:            c.ID.String(),
		FuncionarioID: c.FuncionarioID.String(),
		Mes:           c.Mes,
		Total:         c.Total,
	}
}
