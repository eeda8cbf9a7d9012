package router

import (
	"time"

	"cantina/internal/config"
	"cantina/internal/handler"
	"cantina/internal/middleware"
	"cantina/internal/repository"
	"cantina/internal/service"
	"cantina/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	alunoRepo := repository.NewAlunoRepository(db)
	funcionarioRepo := repository.NewFuncionarioRepository(db)
	contaRepo := repository.NewContaRepository(db)
	produtoRepo := repository.NewProdutoRepository(db)
	tipoProdutoRepo := repository.NewTipoProdutoRepository(db)
	movimentoEstoqueRepo := repository.NewMovimentoEstoqueRepository(db)
	vendaRepo := repository.NewVendaRepository(db)
	caixaRepo := repository.NewCaixaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	alunoSvc := service.NewAlunoService(alunoRepo, produtoRepo, tipoProdutoRepo)
	funcionarioSvc := service.NewFuncionarioService(funcionarioRepo)
	contaSvc := service.NewContaService(contaRepo, alunoRepo, rdb, dispatcher, cfg.SaldoBaixoAviso)
	produtoSvc := service.NewProdutoService(produtoRepo, tipoProdutoRepo)
	estoqueSvc := service.NewEstoqueService(produtoRepo, movimentoEstoqueRepo)
	vendaSvc := service.NewVendaService(vendaRepo, produtoRepo, alunoRepo, funcionarioRepo, contaSvc, estoqueSvc, dispatcher)
	caixaSvc := service.NewCaixaService(caixaRepo, vendaRepo, usuarioRepo, dispatcher, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	alunosH := handler.NewAlunosHandler(alunoSvc)
	funcionariosH := handler.NewFuncionariosHandler(funcionarioSvc)
	contasH := handler.NewContasHandler(contaSvc)
	produtosH := handler.NewProdutosHandler(produtoSvc)
	tiposH := handler.NewTiposProdutoHandler(produtoSvc)
	estoqueH := handler.NewEstoqueHandler(estoqueSvc)
	vendasH := handler.NewVendasHandler(vendaSvc)
	caixaH := handler.NewCaixaHandler(caixaSvc)
	consultaH := handler.NewConsultaSaldoHandler(contaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Consulta de saldo no totem — no auth required
	r.GET("/v1/consulta/saldo/:ra", consultaH.GetSaldoPorRA)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Perfis: operador, supervisor, administrador — declared per-endpoint
		operacao := middleware.RequirePerfil("operador", "supervisor", "administrador")
		supervisao := middleware.RequirePerfil("supervisor", "administrador")
		admin := middleware.RequirePerfil("administrador")

		// Vendas
		v1.POST("/vendas", operacao, vendasH.Registrar)
		v1.POST("/vendas/verificar", operacao, vendasH.Verificar)
		v1.GET("/vendas", operacao, vendasH.Listar)
		v1.GET("/vendas/:id", operacao, vendasH.BuscarPorID)

		// Contas dos alunos
		contas := v1.Group("/contas")
		{
			contas.POST("/:ra/creditos", operacao, contasH.Creditar)
			contas.POST("/:ra/debitos", supervisao, contasH.Debitar)
			contas.GET("/:ra/saldo", operacao, contasH.Saldo)
			contas.GET("/:ra/extrato", operacao, contasH.Extrato)
			contas.PUT("/:ra/limite-diario", supervisao, contasH.DefinirLimite)
			contas.DELETE("/:ra", supervisao, contasH.Desativar)
		}

		// Catálogo de produtos — leitura para todos, escrita supervisão
		v1.GET("/produtos", operacao, produtosH.Listar)
		v1.GET("/produtos/:id", operacao, produtosH.BuscarPorID)
		prods := v1.Group("/produtos", supervisao)
		{
			prods.POST("", produtosH.Criar)
			prods.PUT("/:id", produtosH.Atualizar)
			prods.DELETE("/:id", produtosH.Desativar)
			prods.PATCH("/:id/reativar", produtosH.Reativar)
		}

		v1.GET("/tipos-produto", operacao, tiposH.Listar)
		tipos := v1.Group("/tipos-produto", supervisao)
		{
			tipos.POST("", tiposH.Criar)
			tipos.DELETE("/:id", tiposH.Desativar)
		}

		// Estoque — entradas e ajustes manuais; saídas só pela venda
		estoque := v1.Group("/estoque", supervisao)
		{
			estoque.POST("/entradas", estoqueH.RegistrarEntrada)
			estoque.POST("/ajustes", estoqueH.RegistrarAjuste)
			estoque.GET("/movimentos", estoqueH.Historico)
			estoque.GET("/alertas", estoqueH.Alertas)
		}

		// Caixa
		caixa := v1.Group("/caixa")
		{
			caixa.POST("/abrir", operacao, caixaH.Abrir)
			caixa.GET("/aberturas", supervisao, caixaH.ListarAberturas)
			caixa.GET("/:id/totais", operacao, caixaH.Totais)
			caixa.POST("/:id/fechar", operacao, caixaH.Fechar)
			caixa.GET("/:id/fechamento", operacao, caixaH.BuscarFechamento)
		}
		caixas := v1.Group("/caixas", admin)
		{
			caixas.POST("", caixaH.CriarCaixa)
			caixas.DELETE("/:id", caixaH.DesativarCaixa)
		}
		v1.GET("/caixas", operacao, caixaH.ListarCaixas)

		// Alunos e restrições
		v1.GET("/alunos", operacao, alunosH.Listar)
		v1.GET("/alunos/:ra", operacao, alunosH.BuscarPorRA)
		v1.GET("/alunos/:ra/restricoes", operacao, alunosH.ListarRestricoes)
		alunos := v1.Group("/alunos", supervisao)
		{
			alunos.POST("", alunosH.Criar)
			alunos.PUT("/:ra", alunosH.Atualizar)
			alunos.DELETE("/:ra", alunosH.Desativar)
			alunos.PATCH("/:ra/reativar", alunosH.Reativar)
			alunos.POST("/:ra/restricoes", alunosH.CriarRestricao)
			alunos.DELETE("/:ra/restricoes/:id", alunosH.RemoverRestricao)
		}

		// Funcionários e convênio
		v1.GET("/funcionarios", operacao, funcionariosH.Listar)
		v1.GET("/funcionarios/:id", operacao, funcionariosH.BuscarPorID)
		v1.GET("/funcionarios/:id/conta-mes", supervisao, funcionariosH.ContaDoMes)
		v1.GET("/funcionarios/contas-mes", supervisao, funcionariosH.ListarContasMes)
		funcionarios := v1.Group("/funcionarios", admin)
		{
			funcionarios.POST("", funcionariosH.Criar)
			funcionarios.DELETE("/:id", funcionariosH.Desativar)
		}

		// Usuários do sistema
		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Criar)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Atualizar)
			usuarios.DELETE("/:id", usuariosH.Desativar)
			usuarios.PATCH("/:id/reativar", usuariosH.Reativar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
