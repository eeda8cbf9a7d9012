package infra

import (
	"fmt"

	"cantina/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx.
//
// TranslateError is on so unique-constraint races surface as
// gorm.ErrDuplicatedKey instead of a raw pgconn error.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Aluno{},
		&model.RestricaoAluno{},
		&model.Conta{},
		&model.MovimentoConta{},
		&model.Funcionario{},
		&model.ContaFuncionario{},
		&model.TipoProduto{},
		&model.Produto{},
		&model.MovimentoEstoque{},
		&model.Venda{},
		&model.VendaItem{},
		&model.Caixa{},
		&model.AberturaCaixa{},
		&model.FechamentoCaixa{},
		&model.Usuario{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Atomic, monotonic sale numbering — consumed via nextval() inside
		// the sale transaction.
		{"create vendas_numero_seq",
			`CREATE SEQUENCE IF NOT EXISTS vendas_numero_seq START 1`},

		// At most one open session per register. The flag column alone cannot
		// enforce this; the partial unique index can.
		{"unique open abertura per caixa", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_aberturas_caixa_aberta') THEN
    CREATE UNIQUE INDEX idx_aberturas_caixa_aberta
        ON aberturas_caixa (caixa_id)
        WHERE aberta = true;
  END IF;
END $$`},

		// The daily-limit sum scans today's debits of one account.
		{"index movimentos_conta debito lookup", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimentos_conta_debito_dia') THEN
    CREATE INDEX idx_movimentos_conta_debito_dia
        ON movimentos_conta (conta_id, created_at)
        WHERE tipo = 'debito';
  END IF;
END $$`},

		// The caixa heuristic join scans an operator's sales by time window.
		{"index vendas operador window", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_vendas_operador_janela') THEN
    CREATE INDEX idx_vendas_operador_janela
        ON vendas (usuario_id, created_at);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
