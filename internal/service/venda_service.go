package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendaService interface {
	// Verificar é o pre-check do carrinho: responde o que falharia agora,
	// sem prender lock nenhum. Consultivo — as mesmas regras rodam de novo
	// dentro da transação de Registrar.
	Verificar(ctx context.Context, req dto.VerificarVendaRequest) (*dto.VerificacaoResponse, error)
	Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error)
}

type vendaService struct {
	repo            repository.VendaRepository
	produtoRepo     repository.ProdutoRepository
	alunoRepo       repository.AlunoRepository
	funcionarioRepo repository.FuncionarioRepository
	conta           ContaService
	estoque         EstoqueService
	dispatcher      *worker.Dispatcher
}

func NewVendaService(
	repo repository.VendaRepository,
	produtoRepo repository.ProdutoRepository,
	alunoRepo repository.AlunoRepository,
	funcionarioRepo repository.FuncionarioRepository,
	conta ContaService,
	estoque EstoqueService,
	dispatcher *worker.Dispatcher,
) VendaService {
	return &vendaService{
		repo:            repo,
		produtoRepo:     produtoRepo,
		alunoRepo:       alunoRepo,
		funcionarioRepo: funcionarioRepo,
		conta:           conta,
		estoque:         estoque,
		dispatcher:      dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

type resolvedItem struct {
	produtoID  uuid.UUID
	nome       string
	preco      decimal.Decimal
	quantidade int
	subtotal   decimal.Decimal
}

// ── Registrar ────────────────────────────────────────────────────────────────
// Commit atômico da venda:
//   1. Valida cliente × forma de pagamento (fora da transação)
//   2. Resolve itens, preço corrente, restrições do aluno
//   3. Confere o total informado pelo terminal contra o recalculado
//   4. BEGIN TX: nextval do número, grava venda + itens, baixa o estoque
//      linha a linha em ordem crescente de produto_id, debita a conta /
//      acumula o convênio
//   5. COMMIT — qualquer regra reprovada desfaz tudo
//   6. (async) recibo ao responsável + aviso de saldo baixo

func (s *vendaService) Registrar(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	if err := s.validarPagamento(req); err != nil {
		return nil, err
	}

	var aluno *model.Aluno
	if req.TipoCliente == "aluno" {
		var err error
		aluno, err = s.validarAluno(ctx, *req.AlunoRA)
		if err != nil {
			return nil, err
		}
	}

	var funcionarioID *uuid.UUID
	if req.TipoCliente == "funcionario" {
		fid, err := uuid.Parse(*req.FuncionarioID)
		if err != nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "funcionario_id inválido")
		}
		if _, err := s.funcionarioRepo.FindByID(ctx, fid); err != nil {
			return nil, apierror.NotFound("funcionario_nao_encontrado", "Funcionário não encontrado")
		}
		funcionarioID = &fid
	}

	resolved, total, err := s.resolverItens(ctx, req.Itens, aluno)
	if err != nil {
		return nil, err
	}

	// O terminal mostrou um total ao operador; se o preço mudou no meio do
	// caminho a venda é reprovada, nunca cobrada por um valor não exibido.
	if !total.Equal(req.Total) {
		return nil, apierror.Conflict(apierror.CodeTotalDivergente, "Total divergente — atualize o carrinho").
			With("total_informado", req.Total).
			With("total_calculado", total)
	}

	var troco *decimal.Decimal
	if req.FormaPagamento == "dinheiro" {
		// validarPagamento já garantiu valor_recebido presente.
		if req.ValorRecebido.LessThan(total) {
			return nil, apierror.Conflict(apierror.CodePagamentoInvalido, "Valor recebido menor que o total da venda").
				With("total", total).
				With("valor_recebido", *req.ValorRecebido)
		}
		t := req.ValorRecebido.Sub(total)
		troco = &t
	}

	// Ordem de lock estável: linhas sempre baixadas em produto_id crescente,
	// então duas vendas concorrentes nunca se cruzam em ordem oposta.
	ordenadas := make([]resolvedItem, len(resolved))
	copy(ordenadas, resolved)
	sort.Slice(ordenadas, func(i, j int) bool {
		return ordenadas[i].produtoID.String() < ordenadas[j].produtoID.String()
	})

	var obs *string
	if req.Observacao != "" {
		obs = &req.Observacao
	}

	var venda model.Venda
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}

		venda = model.Venda{
			Numero:         numero,
			TipoCliente:    req.TipoCliente,
			AlunoRA:        req.AlunoRA,
			FuncionarioID:  funcionarioID,
			UsuarioID:      usuarioID,
			Total:          total,
			FormaPagamento: req.FormaPagamento,
			ValorRecebido:  req.ValorRecebido,
			Troco:          troco,
			Observacao:     obs,
		}
		for _, r := range resolved {
			venda.Itens = append(venda.Itens, model.VendaItem{
				ProdutoID:     r.produtoID,
				Quantidade:    r.quantidade,
				PrecoUnitario: r.preco,
				Subtotal:      r.subtotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &venda); err != nil {
			return err
		}

		// Baixa de estoque — reverifica sob lock; o pre-check de Verificar
		// não vale nada aqui dentro.
		for _, r := range ordenadas {
			if _, err := s.estoque.RegistrarSaidaTx(tx, r.produtoID, r.quantidade, &venda.ID, &usuarioID); err != nil {
				return err
			}
		}

		switch req.FormaPagamento {
		case "conta":
			motivo := fmt.Sprintf("Venda nº %d", numero)
			if _, err := s.conta.DebitarTx(tx, *req.AlunoRA, total, motivo, &venda.ID, &usuarioID); err != nil {
				return err
			}
		case "convenio":
			mes := time.Now().Format("2006-01")
			contaFunc, err := s.funcionarioRepo.EnsureContaMesTx(tx, *funcionarioID, mes)
			if err != nil {
				return err
			}
			if err := s.funcionarioRepo.AcumularTx(tx, contaFunc.ID, total); err != nil {
				return err
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Pós-commit: cache e notificações — nada disso desfaz a venda.
	if req.AlunoRA != nil {
		s.conta.InvalidarCacheSaldo(ctx, *req.AlunoRA)
	}
	if req.FormaPagamento == "conta" && s.dispatcher != nil {
		vendaID := venda.ID.String()
		payload := worker.NotificacaoJobPayload{
			Tipo:    "recibo",
			AlunoRA: *req.AlunoRA,
			VendaID: &vendaID,
		}
		if err := s.dispatcher.EnqueueNotificacao(ctx, payload); err != nil {
			log.Error().Err(err).Str("venda_id", vendaID).Msg("failed to enqueue recibo notification")
		}
		if conta, err := s.conta.EnsureConta(ctx, *req.AlunoRA); err == nil {
			s.conta.AvisarSaldoBaixo(ctx, *req.AlunoRA, conta.Saldo)
		}
	}

	resp := vendaToResponse(&venda)
	for i, r := range resolved {
		resp.Itens[i].Produto = r.nome
	}
	return resp, nil
}

// ── Verificar ────────────────────────────────────────────────────────────────

func (s *vendaService) Verificar(ctx context.Context, req dto.VerificarVendaRequest) (*dto.VerificacaoResponse, error) {
	resp := &dto.VerificacaoResponse{Apto: true}

	var aluno *model.Aluno
	var restricoes []model.RestricaoAluno
	switch req.TipoCliente {
	case "aluno":
		if req.AlunoRA == nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "aluno_ra obrigatório para cliente aluno")
		}
		var err error
		aluno, err = s.validarAluno(ctx, *req.AlunoRA)
		if err != nil {
			return nil, err
		}
		restricoes, err = s.alunoRepo.ListRestricoes(ctx, aluno.RA)
		if err != nil {
			return nil, err
		}

		conta, err := s.conta.EnsureConta(ctx, aluno.RA)
		if err == nil {
			resp.Saldo = &conta.Saldo
		}
	case "funcionario":
		if req.FuncionarioID == nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "funcionario_id obrigatório para cliente funcionário")
		}
		fid, err := uuid.Parse(*req.FuncionarioID)
		if err != nil {
			return nil, apierror.Validation(apierror.CodeValorInvalido, "funcionario_id inválido")
		}
		if _, err := s.funcionarioRepo.FindByID(ctx, fid); err != nil {
			return nil, apierror.NotFound("funcionario_nao_encontrado", "Funcionário não encontrado")
		}
		// Garante a conta-convênio do mês corrente para o acúmulo da venda.
		if _, err := s.funcionarioRepo.EnsureContaMes(ctx, fid, time.Now().Format("2006-01")); err != nil {
			return nil, err
		}
	}

	total := decimal.Zero
	for _, item := range req.Itens {
		out := dto.VerificacaoItem{ProdutoID: item.ProdutoID, Quantidade: item.Quantidade, Ok: true}

		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			out.Ok, out.Motivo = false, "produto_id inválido"
			resp.Apto = false
			resp.Itens = append(resp.Itens, out)
			continue
		}
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil || !p.Ativo {
			out.Ok, out.Motivo = false, "produto indisponível"
			resp.Apto = false
			resp.Itens = append(resp.Itens, out)
			continue
		}
		if restricao := restricaoPara(restricoes, p); restricao != nil {
			out.Ok, out.Motivo = false, "produto restrito para o aluno"
			resp.Apto = false
		}
		if p.EstoqueAtual < item.Quantidade {
			out.Ok, out.Motivo = false, fmt.Sprintf("estoque insuficiente (%d em estoque)", p.EstoqueAtual)
			resp.Apto = false
		}
		if out.Ok {
			total = total.Add(p.PrecoVenda.Mul(decimal.NewFromInt(int64(item.Quantidade))))
		}
		resp.Itens = append(resp.Itens, out)
	}
	resp.Total = total

	// O débito em conta só é viável se as regras da conta (ativa, saldo,
	// limite diário) deixarem passar o total de hoje.
	if resp.Apto && aluno != nil && total.IsPositive() {
		if conta, err := s.conta.VerificarDebito(ctx, aluno.RA, total); err != nil {
			var derr *apierror.DomainError
			if !errors.As(err, &derr) {
				return nil, err
			}
			resp.Apto = false
			resp.Motivo = derr.Code
			if conta != nil {
				resp.Saldo = &conta.Saldo
			}
		}
	}
	return resp, nil
}

// ── consultas ────────────────────────────────────────────────────────────────

func (s *vendaService) BuscarPorID(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("venda_nao_encontrada", "Venda não encontrada")
		}
		return nil, err
	}
	return vendaToResponse(venda), nil
}

func (s *vendaService) Listar(ctx context.Context, filter dto.VendaFilter) (*dto.VendaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	vendas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VendaResponse, 0, len(vendas))
	for _, v := range vendas {
		items = append(items, *vendaToResponse(&v))
	}
	return &dto.VendaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ── regras auxiliares ────────────────────────────────────────────────────────

func (s *vendaService) validarPagamento(req dto.RegistrarVendaRequest) error {
	switch req.FormaPagamento {
	case "conta":
		if req.TipoCliente != "aluno" || req.AlunoRA == nil {
			return apierror.Conflict(apierror.CodePagamentoInvalido, "Pagamento em conta exige cliente aluno com RA")
		}
	case "convenio":
		if req.TipoCliente != "funcionario" || req.FuncionarioID == nil {
			return apierror.Conflict(apierror.CodePagamentoInvalido, "Pagamento em convênio exige cliente funcionário")
		}
	case "dinheiro":
		if req.ValorRecebido == nil {
			return apierror.Conflict(apierror.CodePagamentoInvalido, "Pagamento em dinheiro exige valor_recebido")
		}
	}
	if req.TipoCliente == "aluno" && req.AlunoRA == nil {
		return apierror.Validation(apierror.CodeValorInvalido, "aluno_ra obrigatório para cliente aluno")
	}
	if req.TipoCliente == "funcionario" && req.FuncionarioID == nil {
		return apierror.Validation(apierror.CodeValorInvalido, "funcionario_id obrigatório para cliente funcionário")
	}
	return nil
}

func (s *vendaService) validarAluno(ctx context.Context, ra string) (*model.Aluno, error) {
	aluno, err := s.alunoRepo.FindByRA(ctx, ra)
	if err != nil {
		return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
	}
	if !aluno.Ativo {
		return nil, apierror.Conflict(apierror.CodeAlunoInapto, "Aluno inativo não pode comprar")
	}
	return aluno, nil
}

// resolverItens materializa o carrinho: preço corrente, produto ativo e,
// para aluno, o filtro de restrições — tudo antes de qualquer lock.
func (s *vendaService) resolverItens(ctx context.Context, itens []dto.ItemVendaRequest, aluno *model.Aluno) ([]resolvedItem, decimal.Decimal, error) {
	var restricoes []model.RestricaoAluno
	if aluno != nil {
		var err error
		restricoes, err = s.alunoRepo.ListRestricoes(ctx, aluno.RA)
		if err != nil {
			return nil, decimal.Zero, err
		}
	}

	var resolved []resolvedItem
	total := decimal.Zero
	for _, item := range itens {
		pid, err := uuid.Parse(item.ProdutoID)
		if err != nil {
			return nil, decimal.Zero, apierror.Validation(apierror.CodeValorInvalido, "produto_id inválido")
		}
		if item.Quantidade < 1 {
			return nil, decimal.Zero, apierror.Validation(apierror.CodeValorInvalido, "Quantidade deve ser positiva")
		}
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, decimal.Zero, apierror.NotFound(apierror.CodeProdutoNaoEncontrado, "Produto não encontrado").
				With("produto_id", item.ProdutoID)
		}
		if !p.Ativo {
			return nil, decimal.Zero, apierror.Conflict(apierror.CodeProdutoNaoEncontrado, "Produto inativo não pode ser vendido").
				With("produto", p.Nome)
		}
		if restricao := restricaoPara(restricoes, p); restricao != nil {
			derr := apierror.Conflict(apierror.CodeProdutoRestrito, "Produto restrito para o aluno").
				With("produto", p.Nome)
			if restricao.Motivo != nil {
				derr = derr.With("motivo", *restricao.Motivo)
			}
			return nil, decimal.Zero, derr
		}

		subtotal := p.PrecoVenda.Mul(decimal.NewFromInt(int64(item.Quantidade)))
		total = total.Add(subtotal)
		resolved = append(resolved, resolvedItem{
			produtoID:  pid,
			nome:       p.Nome,
			preco:      p.PrecoVenda,
			quantidade: item.Quantidade,
			subtotal:   subtotal,
		})
	}
	return resolved, total, nil
}

// restricaoPara devolve a restrição que bloqueia o produto — por produto
// específico ou pelo tipo inteiro. Presença do registro nega.
func restricaoPara(restricoes []model.RestricaoAluno, p *model.Produto) *model.RestricaoAluno {
	for i := range restricoes {
		r := &restricoes[i]
		if r.ProdutoID != nil && *r.ProdutoID == p.ID {
			return r
		}
		if r.TipoProdutoID != nil && p.TipoProdutoID != nil && *r.TipoProdutoID == *p.TipoProdutoID {
			return r
		}
	}
	return nil
}

func vendaToResponse(v *model.Venda) *dto.VendaResponse {
	items := make([]dto.ItemVendaResponse, 0, len(v.Itens))
	for _, item := range v.Itens {
		nome := ""
		if item.Produto != nil {
			nome = item.Produto.Nome
		}
		items = append(items, dto.ItemVendaResponse{
			ProdutoID:     item.ProdutoID.String(),
			Produto:       nome,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Subtotal:      item.Subtotal,
		})
	}
	var funcionarioID *string
	if v.FuncionarioID != nil {
		f := v.FuncionarioID.String()
		funcionarioID = &f
	}
	observacao := ""
	if v.Observacao != nil {
		observacao = *v.Observacao
	}
	return &dto.VendaResponse{
		ID:             v.ID.String(),
		Numero:         v.Numero,
		TipoCliente:    v.TipoCliente,
		AlunoRA:        v.AlunoRA,
		FuncionarioID:  funcionarioID,
		UsuarioID:      v.UsuarioID.String(),
		Itens:          items,
		Total:          v.Total,
		FormaPagamento: v.FormaPagamento,
		ValorRecebido:  v.ValorRecebido,
		Troco:          v.Troco,
		Observacao:     observacao,
		CreatedAt:      v.CreatedAt.Format(time.RFC3339),
	}
}
