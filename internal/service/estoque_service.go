package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EstoqueService owns every mutation of Produto.EstoqueAtual. Each change
// locks the product row, records a movement with the before/after snapshots
// and writes the new absolute stock — all in one transaction, so the
// movement chain replays to the stored value.
type EstoqueService interface {
	RegistrarEntrada(ctx context.Context, req dto.EntradaEstoqueRequest, usuarioID *uuid.UUID) (*dto.MovimentoEstoqueResponse, error)
	RegistrarAjuste(ctx context.Context, req dto.AjusteEstoqueRequest, usuarioID *uuid.UUID) (*dto.MovimentoEstoqueResponse, error)
	// RegistrarSaidaTx baixa o estoque dentro da transação do chamador (a
	// venda). Reprova com estoque_insuficiente em vez de deixar o estoque
	// negativo.
	RegistrarSaidaTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int, vendaID, usuarioID *uuid.UUID) (*model.MovimentoEstoque, error)
	Historico(ctx context.Context, filter dto.MovimentoEstoqueFilter) (*dto.MovimentoEstoqueListResponse, error)
	Alertas(ctx context.Context) ([]dto.AlertaEstoqueResponse, error)
}

type estoqueService struct {
	produtoRepo   repository.ProdutoRepository
	movimentoRepo repository.MovimentoEstoqueRepository
}

func NewEstoqueService(produtoRepo repository.ProdutoRepository, movimentoRepo repository.MovimentoEstoqueRepository) EstoqueService {
	return &estoqueService{produtoRepo: produtoRepo, movimentoRepo: movimentoRepo}
}

func (s *estoqueService) RegistrarEntrada(ctx context.Context, req dto.EntradaEstoqueRequest, usuarioID *uuid.UUID) (*dto.MovimentoEstoqueResponse, error) {
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "produto_id inválido")
	}
	if req.Quantidade < 1 {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Quantidade da entrada deve ser positiva")
	}

	var mov *model.MovimentoEstoque
	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		mov, err = s.aplicarMovimento(tx, produtoID, "entrada", req.Quantidade, req.Motivo, nil, usuarioID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return movimentoToResponse(mov), nil
}

func (s *estoqueService) RegistrarAjuste(ctx context.Context, req dto.AjusteEstoqueRequest, usuarioID *uuid.UUID) (*dto.MovimentoEstoqueResponse, error) {
	produtoID, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "produto_id inválido")
	}
	if req.Quantidade == 0 {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Ajuste de quantidade zero não tem efeito")
	}

	var mov *model.MovimentoEstoque
	txErr := runTx(ctx, s.produtoRepo.DB(), func(tx *gorm.DB) error {
		mov, err = s.aplicarMovimento(tx, produtoID, "ajuste", req.Quantidade, req.Motivo, nil, usuarioID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return movimentoToResponse(mov), nil
}

func (s *estoqueService) RegistrarSaidaTx(tx *gorm.DB, produtoID uuid.UUID, quantidade int, vendaID, usuarioID *uuid.UUID) (*model.MovimentoEstoque, error) {
	if quantidade < 1 {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Quantidade da saída deve ser positiva")
	}
	motivo := ""
	if vendaID != nil {
		motivo = fmt.Sprintf("Venda %s", vendaID)
	}
	return s.aplicarMovimento(tx, produtoID, "saida", -quantidade, motivo, vendaID, usuarioID)
}

// aplicarMovimento is the single write path: lock the row, compute the new
// stock, refuse negatives, persist movement + absolute value under the lock.
func (s *estoqueService) aplicarMovimento(tx *gorm.DB, produtoID uuid.UUID, tipo string, delta int, motivo string, vendaID, usuarioID *uuid.UUID) (*model.MovimentoEstoque, error) {
	produto, err := s.produtoRepo.FindByIDForUpdate(tx, produtoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado")
		}
		return nil, err
	}

	anterior := produto.EstoqueAtual
	novo := anterior + delta
	if novo < 0 {
		if tipo == "saida" {
			return nil, apierror.Conflict(apierror.CodeEstoqueInsuficiente, "Estoque insuficiente").
				With("produto", produto.Nome).
				With("estoque_atual", anterior).
				With("solicitado", -delta)
		}
		return nil, apierror.Conflict(apierror.CodeEstoqueNegativo, "Ajuste deixaria o estoque negativo").
			With("produto", produto.Nome).
			With("estoque_atual", anterior).
			With("delta", delta)
	}

	mov := &model.MovimentoEstoque{
		ProdutoID:       produtoID,
		Tipo:            tipo,
		Quantidade:      delta,
		EstoqueAnterior: anterior,
		EstoqueNovo:     novo,
		Motivo:          motivo,
		VendaID:         vendaID,
		UsuarioID:       usuarioID,
	}
	if err := s.movimentoRepo.CreateTx(tx, mov); err != nil {
		return nil, err
	}
	if err := s.produtoRepo.UpdateEstoqueTx(tx, produtoID, novo); err != nil {
		return nil, err
	}
	mov.Produto = produto
	return mov, nil
}

func (s *estoqueService) Historico(ctx context.Context, filter dto.MovimentoEstoqueFilter) (*dto.MovimentoEstoqueListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movimentos, total, err := s.movimentoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimentoEstoqueResponse, 0, len(movimentos))
	for _, m := range movimentos {
		items = append(items, *movimentoToResponse(&m))
	}
	return &dto.MovimentoEstoqueListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *estoqueService) Alertas(ctx context.Context) ([]dto.AlertaEstoqueResponse, error) {
	produtos, err := s.produtoRepo.ListEstoqueBaixo(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaEstoqueResponse, 0, len(produtos))
	for _, p := range produtos {
		alertas = append(alertas, dto.AlertaEstoqueResponse{
			ProdutoID:     p.ID.String(),
			Nome:          p.Nome,
			EstoqueAtual:  p.EstoqueAtual,
			EstoqueMinimo: p.EstoqueMinimo,
		})
	}
	return alertas, nil
}

func movimentoToResponse(m *model.MovimentoEstoque) *dto.MovimentoEstoqueResponse {
	var vendaID, usuarioID *string
	if m.VendaID != nil {
		v := m.VendaID.String()
		vendaID = &v
	}
	if m.UsuarioID != nil {
		u := m.UsuarioID.String()
		usuarioID = &u
	}
	return &dto.MovimentoEstoqueResponse{
		ID:              m.ID.String(),
		ProdutoID:       m.ProdutoID.String(),
		Tipo:            m.Tipo,
		Quantidade:      m.Quantidade,
		EstoqueAnterior: m.EstoqueAnterior,
		EstoqueNovo:     m.EstoqueNovo,
		Motivo:          m.Motivo,
		VendaID:         vendaID,
		UsuarioID:       usuarioID,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339),
	}
}
