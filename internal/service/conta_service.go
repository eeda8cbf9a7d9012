package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/infra"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContaService is the student prepaid-account ledger. Every balance change
// happens under the account row lock, inside one transaction with its
// movement record — the balance and the log never diverge.
type ContaService interface {
	// EnsureConta devolve a conta do aluno, criando-a zerada na primeira
	// compra/recarga. Idempotente sob corrida.
	EnsureConta(ctx context.Context, ra string) (*model.Conta, error)
	Creditar(ctx context.Context, ra string, req dto.CreditarContaRequest, usuarioID *uuid.UUID) (*dto.ContaResponse, error)
	Debitar(ctx context.Context, ra string, req dto.DebitarContaRequest, usuarioID *uuid.UUID) (*dto.ContaResponse, error)
	// DebitarTx roda as regras de débito dentro da transação do chamador
	// (a venda): lock da conta, conta ativa, sem estouro de saldo, limite
	// diário. Devolve a conta já com o saldo novo.
	DebitarTx(tx *gorm.DB, ra string, valor decimal.Decimal, motivo string, vendaID, usuarioID *uuid.UUID) (*model.Conta, error)
	// VerificarDebito roda as mesmas regras do DebitarTx sem tocar no saldo:
	// conta ativa, saldo suficiente, limite diário. Usado na pré-verificação
	// do carrinho — a resposta é consultiva, a venda revalida sob lock.
	VerificarDebito(ctx context.Context, ra string, valor decimal.Decimal) (*model.Conta, error)
	Saldo(ctx context.Context, ra string) (*dto.SaldoResponse, error)
	Extrato(ctx context.Context, ra string, filter dto.ExtratoFilter) (*dto.ExtratoResponse, error)
	DefinirLimite(ctx context.Context, ra string, limite *decimal.Decimal) (*dto.ContaResponse, error)
	Desativar(ctx context.Context, ra string) error
	// AvisarSaldoBaixo enqueues the low-balance notice when saldo is under
	// the configured threshold. Best-effort, called after commit.
	AvisarSaldoBaixo(ctx context.Context, ra string, saldo decimal.Decimal)
	// InvalidarCacheSaldo drops the cached balance after any mutation.
	InvalidarCacheSaldo(ctx context.Context, ra string)
}

type contaService struct {
	repo        repository.ContaRepository
	alunoRepo   repository.AlunoRepository
	rdb         *redis.Client
	dispatcher  *worker.Dispatcher
	saldoMinimo decimal.Decimal
}

func NewContaService(
	repo repository.ContaRepository,
	alunoRepo repository.AlunoRepository,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
	saldoMinimo decimal.Decimal,
) ContaService {
	return &contaService{
		repo:        repo,
		alunoRepo:   alunoRepo,
		rdb:         rdb,
		dispatcher:  dispatcher,
		saldoMinimo: saldoMinimo,
	}
}

func (s *contaService) EnsureConta(ctx context.Context, ra string) (*model.Conta, error) {
	conta, err := s.repo.FindByRA(ctx, ra)
	if err == nil {
		return conta, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	aluno, err := s.alunoRepo.FindByRA(ctx, ra)
	if err != nil {
		return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
	}
	if !aluno.Ativo {
		return nil, apierror.Conflict(apierror.CodeAlunoInapto, "Aluno inativo")
	}

	nova := &model.Conta{AlunoRA: ra, Saldo: decimal.Zero, Ativo: true}
	err = s.repo.Create(ctx, nova)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Corrida de criação — a unique de aluno_ra decidiu; relê o vencedor.
		return s.repo.FindByRA(ctx, ra)
	}
	if err != nil {
		return nil, err
	}
	return nova, nil
}

func (s *contaService) Creditar(ctx context.Context, ra string, req dto.CreditarContaRequest, usuarioID *uuid.UUID) (*dto.ContaResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Valor da recarga deve ser maior que zero")
	}

	conta, err := s.EnsureConta(ctx, ra)
	if err != nil {
		return nil, err
	}
	if !conta.Ativo {
		return nil, apierror.Conflict(apierror.CodeContaInativa, "Conta desativada")
	}

	var atualizada *model.Conta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByRAForUpdate(tx, ra)
		if err != nil {
			return err
		}
		novoSaldo := c.Saldo.Add(req.Valor)
		if err := s.repo.UpdateSaldoTx(tx, c.ID, novoSaldo); err != nil {
			return err
		}
		mov := &model.MovimentoConta{
			ContaID:   c.ID,
			Tipo:      "credito",
			Valor:     req.Valor,
			Motivo:    req.Motivo,
			UsuarioID: usuarioID,
		}
		if err := s.repo.CreateMovimentoTx(tx, mov); err != nil {
			return err
		}
		c.Saldo = novoSaldo
		atualizada = c
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.InvalidarCacheSaldo(ctx, ra)
	return contaToResponse(atualizada), nil
}

func (s *contaService) Debitar(ctx context.Context, ra string, req dto.DebitarContaRequest, usuarioID *uuid.UUID) (*dto.ContaResponse, error) {
	if !req.Valor.IsPositive() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Valor do débito deve ser maior que zero")
	}

	var conta *model.Conta
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.DebitarTx(tx, ra, req.Valor, req.Motivo, nil, usuarioID)
		if err != nil {
			return err
		}
		conta = c
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.InvalidarCacheSaldo(ctx, ra)
	s.AvisarSaldoBaixo(ctx, ra, conta.Saldo)
	return contaToResponse(conta), nil
}

func (s *contaService) DebitarTx(tx *gorm.DB, ra string, valor decimal.Decimal, motivo string, vendaID, usuarioID *uuid.UUID) (*model.Conta, error) {
	if !valor.IsPositive() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Valor do débito deve ser maior que zero")
	}

	conta, err := s.repo.FindByRAForUpdate(tx, ra)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("conta_nao_encontrada", "Aluno não possui conta na cantina")
		}
		return nil, err
	}
	if !conta.Ativo {
		return nil, apierror.Conflict(apierror.CodeContaInativa, "Conta desativada")
	}

	// Sem estouro: saldo nunca fica negativo.
	if conta.Saldo.LessThan(valor) {
		return nil, apierror.Conflict(apierror.CodeSaldoInsuficiente, "Saldo insuficiente").
			With("saldo", conta.Saldo).
			With("falta", valor.Sub(conta.Saldo))
	}

	// Limite diário: débitos de hoje + este débito não podem passar o teto.
	// A soma roda sob o lock da conta — duas vendas simultâneas não furam o limite.
	if conta.LimiteDiario != nil {
		gastoHoje, err := s.repo.SumDebitosDoDiaTx(tx, conta.ID, time.Now())
		if err != nil {
			return nil, err
		}
		if gastoHoje.Add(valor).GreaterThan(*conta.LimiteDiario) {
			return nil, apierror.Conflict(apierror.CodeLimiteDiarioExcedido, "Limite diário de gastos excedido").
				With("limite_diario", *conta.LimiteDiario).
				With("gasto_hoje", gastoHoje).
				With("disponivel", conta.LimiteDiario.Sub(gastoHoje))
		}
	}

	novoSaldo := conta.Saldo.Sub(valor)
	if err := s.repo.UpdateSaldoTx(tx, conta.ID, novoSaldo); err != nil {
		return nil, err
	}
	mov := &model.MovimentoConta{
		ContaID:   conta.ID,
		Tipo:      "debito",
		Valor:     valor,
		Motivo:    motivo,
		VendaID:   vendaID,
		UsuarioID: usuarioID,
	}
	if err := s.repo.CreateMovimentoTx(tx, mov); err != nil {
		return nil, err
	}

	conta.Saldo = novoSaldo
	return conta, nil
}

func (s *contaService) VerificarDebito(ctx context.Context, ra string, valor decimal.Decimal) (*model.Conta, error) {
	conta, err := s.repo.FindByRA(ctx, ra)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("conta_nao_encontrada", "Aluno não possui conta na cantina")
		}
		return nil, err
	}
	if !conta.Ativo {
		return nil, apierror.Conflict(apierror.CodeContaInativa, "Conta desativada")
	}
	if conta.Saldo.LessThan(valor) {
		return conta, apierror.Conflict(apierror.CodeSaldoInsuficiente, "Saldo insuficiente").
			With("saldo", conta.Saldo).
			With("falta", valor.Sub(conta.Saldo))
	}
	if conta.LimiteDiario != nil {
		gastoHoje, err := s.repo.SumDebitosDoDia(ctx, conta.ID, time.Now())
		if err != nil {
			return nil, err
		}
		if gastoHoje.Add(valor).GreaterThan(*conta.LimiteDiario) {
			return conta, apierror.Conflict(apierror.CodeLimiteDiarioExcedido, "Limite diário de gastos excedido").
				With("limite_diario", *conta.LimiteDiario).
				With("gasto_hoje", gastoHoje).
				With("disponivel", conta.LimiteDiario.Sub(gastoHoje))
		}
	}
	return conta, nil
}

// Saldo answers the public terminal lookup, cache-first.
func (s *contaService) Saldo(ctx context.Context, ra string) (*dto.SaldoResponse, error) {
	if s.rdb != nil {
		if cached, err := infra.GetCachedSaldo(ctx, s.rdb, ra); err == nil {
			var resp dto.SaldoResponse
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		}
	}

	aluno, err := s.alunoRepo.FindByRA(ctx, ra)
	if err != nil {
		return nil, apierror.NotFound("aluno_nao_encontrado", "Aluno não encontrado")
	}

	saldo := decimal.Zero
	if conta, err := s.repo.FindByRA(ctx, ra); err == nil {
		saldo = conta.Saldo
	}

	resp := &dto.SaldoResponse{AlunoRA: ra, Nome: aluno.Nome, Saldo: saldo}
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := infra.CacheSaldo(ctx, s.rdb, ra, data); err != nil {
				log.Debug().Err(err).Str("ra", ra).Msg("saldo cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *contaService) Extrato(ctx context.Context, ra string, filter dto.ExtratoFilter) (*dto.ExtratoResponse, error) {
	conta, err := s.repo.FindByRA(ctx, ra)
	if err != nil {
		return nil, apierror.NotFound("conta_nao_encontrada", "Aluno não possui conta na cantina")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movimentos, total, err := s.repo.ListMovimentos(ctx, conta.ID, filter.Tipo, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MovimentoContaResponse, 0, len(movimentos))
	for _, m := range movimentos {
		var vendaID *string
		if m.VendaID != nil {
			v := m.VendaID.String()
			vendaID = &v
		}
		items = append(items, dto.MovimentoContaResponse{
			ID:        m.ID.String(),
			Tipo:      m.Tipo,
			Valor:     m.Valor,
			Motivo:    m.Motivo,
			VendaID:   vendaID,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.ExtratoResponse{
		Conta:      *contaToResponse(conta),
		Movimentos: items,
		Page:       filter.Page,
		Total:      total,
	}, nil
}

func (s *contaService) DefinirLimite(ctx context.Context, ra string, limite *decimal.Decimal) (*dto.ContaResponse, error) {
	if limite != nil && !limite.IsPositive() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Limite diário deve ser maior que zero (ou nulo para remover)")
	}
	conta, err := s.EnsureConta(ctx, ra)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetLimiteDiario(ctx, conta.ID, limite); err != nil {
		return nil, err
	}
	conta.LimiteDiario = limite
	return contaToResponse(conta), nil
}

func (s *contaService) Desativar(ctx context.Context, ra string) error {
	conta, err := s.repo.FindByRA(ctx, ra)
	if err != nil {
		return apierror.NotFound("conta_nao_encontrada", "Aluno não possui conta na cantina")
	}
	if err := s.repo.Desativar(ctx, conta.ID); err != nil {
		return err
	}
	s.InvalidarCacheSaldo(ctx, ra)
	return nil
}

func (s *contaService) AvisarSaldoBaixo(ctx context.Context, ra string, saldo decimal.Decimal) {
	if s.dispatcher == nil || saldo.GreaterThanOrEqual(s.saldoMinimo) {
		return
	}
	payload := worker.NotificacaoJobPayload{
		Tipo:    "saldo_baixo",
		AlunoRA: ra,
		Saldo:   saldo.StringFixed(2),
	}
	if err := s.dispatcher.EnqueueNotificacao(ctx, payload); err != nil {
		log.Error().Err(err).Str("ra", ra).Msg("failed to enqueue saldo_baixo notification")
	}
}

func (s *contaService) InvalidarCacheSaldo(ctx context.Context, ra string) {
	if s.rdb == nil {
		return
	}
	if err := infra.InvalidateSaldo(ctx, s.rdb, ra); err != nil {
		log.Debug().Err(err).Str("ra", ra).Msg("saldo cache invalidation failed")
	}
}

func contaToResponse(c *model.Conta) *dto.ContaResponse {
	return &dto.ContaResponse{
		ID:           c.ID.String(),
		AlunoRA:      c.AlunoRA,
		Saldo:        c.Saldo,
		LimiteDiario: c.LimiteDiario,
		Ativo:        c.Ativo,
	}
}
