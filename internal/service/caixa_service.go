package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cantina/internal/apierror"
	"cantina/internal/dto"
	"cantina/internal/infra"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CaixaService drives the register session lifecycle: abre com o fundo de
// troco, acompanha os totais do operador e fecha conferindo o dinheiro
// contado contra o esperado. A apuração casa vendas por operador + janela
// de tempo da sessão — não há FK de venda para sessão.
type CaixaService interface {
	CriarCaixa(ctx context.Context, req dto.CriarCaixaRequest) (*dto.CaixaResponse, error)
	ListarCaixas(ctx context.Context) ([]dto.CaixaResponse, error)
	DesativarCaixa(ctx context.Context, id uuid.UUID) error

	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.AberturaCaixaResponse, error)
	// Totais devolve a apuração parcial da sessão aberta (ou final, se já
	// fechada) — sempre recalculada das vendas, nunca armazenada antes do
	// fechamento.
	Totais(ctx context.Context, aberturaID uuid.UUID) (*dto.TotaisCaixaResponse, error)
	Fechar(ctx context.Context, usuarioID uuid.UUID, aberturaID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoCaixaResponse, error)
	ListarAberturas(ctx context.Context, page, limit int) ([]dto.AberturaCaixaResponse, int64, error)
	BuscarFechamento(ctx context.Context, aberturaID uuid.UUID) (*dto.FechamentoCaixaResponse, error)
}

type caixaService struct {
	repo           repository.CaixaRepository
	vendaRepo      repository.VendaRepository
	usuarioRepo    repository.UsuarioRepository
	dispatcher     *worker.Dispatcher
	pdfStoragePath string
}

func NewCaixaService(
	repo repository.CaixaRepository,
	vendaRepo repository.VendaRepository,
	usuarioRepo repository.UsuarioRepository,
	dispatcher *worker.Dispatcher,
	pdfStoragePath string,
) CaixaService {
	return &caixaService{
		repo:           repo,
		vendaRepo:      vendaRepo,
		usuarioRepo:    usuarioRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

// ── cadastro de caixas ───────────────────────────────────────────────────────

func (s *caixaService) CriarCaixa(ctx context.Context, req dto.CriarCaixaRequest) (*dto.CaixaResponse, error) {
	caixa := &model.Caixa{Nome: req.Nome, Ativo: true}
	if err := s.repo.CreateCaixa(ctx, caixa); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.Conflict("caixa_duplicado", "Já existe um caixa com esse nome")
		}
		return nil, err
	}
	return caixaToResponse(caixa), nil
}

func (s *caixaService) ListarCaixas(ctx context.Context) ([]dto.CaixaResponse, error) {
	caixas, err := s.repo.ListCaixas(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CaixaResponse, 0, len(caixas))
	for _, c := range caixas {
		resp = append(resp, *caixaToResponse(&c))
	}
	return resp, nil
}

func (s *caixaService) DesativarCaixa(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCaixaByID(ctx, id); err != nil {
		return apierror.NotFound("caixa_nao_encontrado", "Caixa não encontrado")
	}
	return s.repo.DesativarCaixa(ctx, id)
}

// ── abertura ─────────────────────────────────────────────────────────────────

func (s *caixaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCaixaRequest) (*dto.AberturaCaixaResponse, error) {
	if req.ValorAbertura.IsNegative() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Valor de abertura não pode ser negativo")
	}
	caixaID, err := uuid.Parse(req.CaixaID)
	if err != nil {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "caixa_id inválido")
	}
	caixa, err := s.repo.FindCaixaByID(ctx, caixaID)
	if err != nil {
		return nil, apierror.NotFound("caixa_nao_encontrado", "Caixa não encontrado")
	}
	if !caixa.Ativo {
		return nil, apierror.Conflict("caixa_inativo", "Caixa desativado não pode ser aberto")
	}

	if _, err := s.repo.FindAberturaAtiva(ctx, caixaID); err == nil {
		return nil, apierror.StateConflict(apierror.CodeCaixaJaAberto, "Caixa já possui sessão aberta")
	}

	var obs *string
	if req.Observacao != "" {
		obs = &req.Observacao
	}
	abertura := &model.AberturaCaixa{
		CaixaID:       caixaID,
		UsuarioID:     usuarioID,
		ValorAbertura: req.ValorAbertura,
		Observacao:    obs,
		Aberta:        true,
		OpenedAt:      time.Now(),
	}
	if err := s.repo.CreateAbertura(ctx, abertura); err != nil {
		// Índice parcial (caixa_id WHERE aberta) decide a corrida de abertura.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.StateConflict(apierror.CodeCaixaJaAberto, "Caixa já possui sessão aberta")
		}
		return nil, err
	}
	return aberturaToResponse(abertura), nil
}

// ── apuração ─────────────────────────────────────────────────────────────────

func (s *caixaService) Totais(ctx context.Context, aberturaID uuid.UUID) (*dto.TotaisCaixaResponse, error) {
	abertura, err := s.repo.FindAberturaByID(ctx, aberturaID)
	if err != nil {
		return nil, apierror.NotFound("abertura_nao_encontrada", "Sessão de caixa não encontrada")
	}
	totais, err := s.vendaRepo.TotaisPorOperador(ctx, abertura.UsuarioID, abertura.OpenedAt, abertura.ClosedAt)
	if err != nil {
		return nil, err
	}
	esperado := abertura.ValorAbertura.Add(totais.Dinheiro).Sub(totais.Troco)
	return &dto.TotaisCaixaResponse{
		AberturaID:    abertura.ID.String(),
		ValorAbertura: abertura.ValorAbertura,
		TotalVendas:   totais.TotalVendas,
		TotalDinheiro: totais.Dinheiro,
		TotalCartao:   totais.Cartao,
		TotalPix:      totais.Pix,
		TotalTroco:    totais.Troco,
		ValorEsperado: esperado,
	}, nil
}

// ── fechamento ───────────────────────────────────────────────────────────────
// Transação única: lock da abertura, checagem de dono e de estado, congela a
// janela em closed_at, grava o fechamento e vira a flag. Fechar duas vezes é
// impossível — o segundo fechamento encontra aberta=false sob o lock.

func (s *caixaService) Fechar(ctx context.Context, usuarioID uuid.UUID, aberturaID uuid.UUID, req dto.FecharCaixaRequest) (*dto.FechamentoCaixaResponse, error) {
	if req.ValorContado.IsNegative() {
		return nil, apierror.Validation(apierror.CodeValorInvalido, "Valor contado não pode ser negativo")
	}

	var fechamento model.FechamentoCaixa
	var abertura *model.AberturaCaixa
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		abertura, err = s.repo.FindAberturaForUpdate(tx, aberturaID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("abertura_nao_encontrada", "Sessão de caixa não encontrada")
			}
			return err
		}
		if !abertura.Aberta {
			return apierror.StateConflict(apierror.CodeCaixaJaFechado, "Sessão de caixa já fechada")
		}
		if abertura.UsuarioID != usuarioID {
			return apierror.Forbidden(apierror.CodeNaoEOperador, "Somente o operador que abriu pode fechar a sessão")
		}

		var obs *string
		if req.Observacao != "" {
			obs = &req.Observacao
		}

		closedAt := time.Now()
		totais, err := s.vendaRepo.TotaisPorOperador(ctx, abertura.UsuarioID, abertura.OpenedAt, &closedAt)
		if err != nil {
			return err
		}
		esperado := abertura.ValorAbertura.Add(totais.Dinheiro).Sub(totais.Troco)

		fechamento = model.FechamentoCaixa{
			AberturaCaixaID: abertura.ID,
			UsuarioID:       usuarioID,
			ValorContado:    req.ValorContado,
			TotalVendas:     totais.TotalVendas,
			TotalDinheiro:   totais.Dinheiro,
			TotalCartao:     totais.Cartao,
			TotalPix:        totais.Pix,
			TotalTroco:      totais.Troco,
			ValorEsperado:   esperado,
			Diferenca:       req.ValorContado.Sub(esperado),
			Observacao:      obs,
		}
		if err := s.repo.CreateFechamentoTx(tx, &fechamento); err != nil {
			return err
		}

		abertura.Aberta = false
		abertura.ClosedAt = &closedAt
		return s.repo.FecharAberturaTx(tx, abertura)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.gerarRelatorioFechamento(ctx, abertura, &fechamento)
	return fechamentoToResponse(&fechamento), nil
}

// gerarRelatorioFechamento writes the closing report PDF and mails it to the
// operator. Best-effort — a render or enqueue failure never undoes the
// fechamento.
func (s *caixaService) gerarRelatorioFechamento(ctx context.Context, abertura *model.AberturaCaixa, fechamento *model.FechamentoCaixa) {
	caixaNome := ""
	if caixa, err := s.repo.FindCaixaByID(ctx, abertura.CaixaID); err == nil {
		caixaNome = caixa.Nome
	}
	var operador *model.Usuario
	if s.usuarioRepo != nil {
		operador, _ = s.usuarioRepo.FindByID(ctx, fechamento.UsuarioID)
	}
	operadorNome := ""
	if operador != nil {
		operadorNome = operador.Nome
	}

	pdfPath := ""
	if s.pdfStoragePath != "" {
		path, err := infra.GerarFechamentoPDF(abertura, fechamento, caixaNome, operadorNome, s.pdfStoragePath)
		if err != nil {
			log.Error().Err(err).Str("abertura_id", abertura.ID.String()).Msg("failed to generate fechamento PDF")
		} else {
			pdfPath = path
			log.Info().Str("path", path).Msg("fechamento PDF generated")
		}
	}

	if s.dispatcher == nil || operador == nil || operador.Email == nil || *operador.Email == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail: *operador.Email,
		Subject: fmt.Sprintf("Cantina — fechamento do caixa %s", caixaNome),
		Body: fmt.Sprintf(
			"Sessão fechada por %s. Vendas: R$ %s. Esperado em dinheiro: R$ %s. Contado: R$ %s. Diferença: R$ %s.",
			operadorNome,
			fechamento.TotalVendas.StringFixed(2),
			fechamento.ValorEsperado.StringFixed(2),
			fechamento.ValorContado.StringFixed(2),
			fechamento.Diferenca.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("failed to enqueue fechamento email")
	}
}

func (s *caixaService) ListarAberturas(ctx context.Context, page, limit int) ([]dto.AberturaCaixaResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	aberturas, total, err := s.repo.ListAberturas(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	resp := make([]dto.AberturaCaixaResponse, 0, len(aberturas))
	for _, a := range aberturas {
		resp = append(resp, *aberturaToResponse(&a))
	}
	return resp, total, nil
}

func (s *caixaService) BuscarFechamento(ctx context.Context, aberturaID uuid.UUID) (*dto.FechamentoCaixaResponse, error) {
	fechamento, err := s.repo.FindFechamentoByAbertura(ctx, aberturaID)
	if err != nil {
		return nil, apierror.NotFound("fechamento_nao_encontrado", "Sessão ainda não foi fechada")
	}
	return fechamentoToResponse(fechamento), nil
}

// ── conversões ───────────────────────────────────────────────────────────────

func caixaToResponse(c *model.Caixa) *dto.CaixaResponse {
	return &dto.CaixaResponse{ID: c.ID.String(), Nome: c.Nome, Ativo: c.Ativo}
}

func aberturaToResponse(a *model.AberturaCaixa) *dto.AberturaCaixaResponse {
	var closedAt *string
	if a.ClosedAt != nil {
		c := a.ClosedAt.Format(time.RFC3339)
		closedAt = &c
	}
	observacao := ""
	if a.Observacao != nil {
		observacao = *a.Observacao
	}
	return &dto.AberturaCaixaResponse{
		ID:            a.ID.String(),
		CaixaID:       a.CaixaID.String(),
		UsuarioID:     a.UsuarioID.String(),
		ValorAbertura: a.ValorAbertura,
		Observacao:    observacao,
		Aberta:        a.Aberta,
		OpenedAt:      a.OpenedAt.Format(time.RFC3339),
		ClosedAt:      closedAt,
	}
}

func fechamentoToResponse(f *model.FechamentoCaixa) *dto.FechamentoCaixaResponse {
	observacao := ""
	if f.Observacao != nil {
		observacao = *f.Observacao
	}
	return &dto.FechamentoCaixaResponse{
		ID:            f.ID.String(),
		AberturaID:    f.AberturaCaixaID.String(),
		UsuarioID:     f.UsuarioID.String(),
		ValorContado:  f.ValorContado,
		TotalVendas:   f.TotalVendas,
		TotalDinheiro: f.TotalDinheiro,
		TotalCartao:   f.TotalCartao,
		TotalPix:      f.TotalPix,
		TotalTroco:    f.TotalTroco,
		ValorEsperado: f.ValorEsperado,
		Diferenca:     f.Diferenca,
		Observacao:    observacao,
		CreatedAt:     f.CreatedAt.Format(time.RFC3339),
	}
}
