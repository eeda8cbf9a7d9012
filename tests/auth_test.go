package tests

import (
	"context"
	"testing"

	"cantina/internal/config"
	"cantina/internal/dto"
	"cantina/internal/model"
	"cantina/internal/repository"
	"cantina/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubUsuarioRepo is an in-memory UsuarioRepository.
type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, existente := range r.usuarios {
		if existente.Username == u.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Ativo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInativos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Ativo || incluirInativos {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) Desativar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Ativo = false
	}
	return nil
}

func (r *stubUsuarioRepo) Reativar(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Ativo = true
	}
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func buildAuthSvc() (service.AuthService, *stubUsuarioRepo, *config.Config) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "segredo-de-teste",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(repo, cfg), repo, cfg
}

func seedUsuario(t *testing.T, repo *stubUsuarioRepo, username, password, perfil string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		ID:           uuid.New(),
		Username:     username,
		Nome:         "Usuário de Teste",
		PasswordHash: string(hash),
		Perfil:       perfil,
		Ativo:        true,
	}
	repo.usuarios[u.ID] = u
	return u
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin_OK(t *testing.T) {
	svc, repo, cfg := buildAuthSvc()
	u := seedUsuario(t, repo, "maria", "senha-forte", "operador")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "senha-forte"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "maria", resp.User.Username)

	// O access token carrega user_id e perfil assinados com o segredo.
	token, err := jwt.Parse(resp.AccessToken, func(_ *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, u.ID.String(), claims["user_id"])
	assert.Equal(t, "operador", claims["perfil"])
}

func TestLogin_SenhaErrada(t *testing.T) {
	svc, repo, _ := buildAuthSvc()
	seedUsuario(t, repo, "maria", "senha-forte", "operador")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "outra-senha"})
	assert.ErrorContains(t, err, "credenciais inválidas")
}

func TestLogin_UsuarioInativo(t *testing.T) {
	svc, repo, _ := buildAuthSvc()
	u := seedUsuario(t, repo, "maria", "senha-forte", "operador")
	u.Ativo = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "senha-forte"})
	assert.ErrorContains(t, err, "credenciais inválidas")
}

func TestRefresh_TokenValido(t *testing.T) {
	svc, repo, _ := buildAuthSvc()
	seedUsuario(t, repo, "maria", "senha-forte", "supervisor")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "senha-forte"})
	require.NoError(t, err)

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, renovado.AccessToken)
	assert.Equal(t, "maria", renovado.User.Username)
}

func TestRefresh_TokenInvalido(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.Refresh(context.Background(), "nem-de-longe-um-jwt")
	assert.Error(t, err)
}

func TestCriarUsuario_Duplicado(t *testing.T) {
	svc, _, _ := buildAuthSvc()

	_, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "joao",
		Nome:     "João Pereira",
		Password: "senha-forte",
		Perfil:   "operador",
	})
	require.NoError(t, err)

	_, err = svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "joao",
		Nome:     "Outro João",
		Password: "senha-forte",
		Perfil:   "operador",
	})
	requireDomainCode(t, err, "usuario_duplicado")
}

func TestAtualizarUsuario_TrocaSenha(t *testing.T) {
	svc, repo, _ := buildAuthSvc()
	u := seedUsuario(t, repo, "maria", "senha-antiga", "operador")

	_, err := svc.AtualizarUsuario(context.Background(), u.ID, dto.AtualizarUsuarioRequest{
		Password: "senha-novinha",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "senha-novinha"})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "senha-antiga"})
	assert.Error(t, err)
}
