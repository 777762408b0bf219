package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/tabel-bot/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "tabel-bot-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 42, pkgjwt.RoleCommander, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, pkgjwt.RoleCommander, role)
}

func TestParse_Expired(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 42, pkgjwt.RoleCommander, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "просроченный токен должен отклоняться")
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 42, pkgjwt.RoleCommander, testIssuer, 60)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("другой-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := pkgjwt.Generate("", 42, pkgjwt.RoleCommander, testIssuer, 60)
	assert.Error(t, err)
}
