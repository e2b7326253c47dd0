package identity

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/churchconnect/realtime/internal/domain"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "churchconnect"
)

func TestResolve_Bearer_Header(t *testing.T) {
	req := require.New(t)
	p := NewJWTProvider(testSecret, testIssuer)

	token, err := p.GenerateToken("17", "grace", time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/ws/notifications/17", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	identity, err := p.Resolve(r)
	req.NoError(err)
	req.Equal("17", identity.ID)
	req.Equal("grace", identity.Username)
}

func TestResolve_Token_Query_Parameter(t *testing.T) {
	req := require.New(t)
	p := NewJWTProvider(testSecret, testIssuer)

	token, err := p.GenerateToken("17", "grace", time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/ws/notifications/17?token="+token, nil)

	identity, err := p.Resolve(r)
	req.NoError(err)
	req.Equal("17", identity.ID)
}

func TestResolve_Missing_Credentials(t *testing.T) {
	req := require.New(t)
	p := NewJWTProvider(testSecret, testIssuer)

	r := httptest.NewRequest("GET", "/ws/chat/G42", nil)

	_, err := p.Resolve(r)
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestResolve_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	other := NewJWTProvider("other-secret", testIssuer)
	token, err := other.GenerateToken("17", "grace", time.Minute)
	req.NoError(err)

	p := NewJWTProvider(testSecret, testIssuer)
	r := httptest.NewRequest("GET", "/ws/chat/G42?token="+token, nil)

	_, err = p.Resolve(r)
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestResolve_Wrong_Issuer(t *testing.T) {
	req := require.New(t)

	other := NewJWTProvider(testSecret, "someone-else")
	token, err := other.GenerateToken("17", "grace", time.Minute)
	req.NoError(err)

	p := NewJWTProvider(testSecret, testIssuer)
	r := httptest.NewRequest("GET", "/ws/chat/G42?token="+token, nil)

	_, err = p.Resolve(r)
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestResolve_Expired_Token(t *testing.T) {
	req := require.New(t)
	p := NewJWTProvider(testSecret, testIssuer)

	token, err := p.GenerateToken("17", "grace", -time.Minute)
	req.NoError(err)

	r := httptest.NewRequest("GET", "/ws/chat/G42?token="+token, nil)

	_, err = p.Resolve(r)
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}

func TestResolve_Garbage_Token(t *testing.T) {
	req := require.New(t)
	p := NewJWTProvider(testSecret, testIssuer)

	r := httptest.NewRequest("GET", "/ws/chat/G42?token=not.a.jwt", nil)

	_, err := p.Resolve(r)
	req.ErrorIs(err, domain.ErrAuthenticationMissing)
}
