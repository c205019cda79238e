package usecase_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
	"github.com/Alanle1011/contract-marketplace/stores/auth/usecase"
)

const loginMsgTemplate = "Sign this message to access the marketplace: %s"

func TestSignAndParseToken(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := fmt.Sprintf(loginMsgTemplate, strings.ToLower(address))
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	require.NoError(t, err)

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", loginMsgTemplate)

	tkn, err := u.SignToken(ctx, domain.Address(address), hexutil.Encode(sig))
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)

	ads, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, strings.ToLower(address), ads)
}

func TestSignTokenRejectsWrongSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	otherKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := fmt.Sprintf(loginMsgTemplate, strings.ToLower(address))
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), otherKey)
	require.NoError(t, err)

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", loginMsgTemplate)

	_, err = u.SignToken(ctx, domain.Address(address), hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidSignature, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	ctx := ctx.Background()
	u := usecase.New("jwt-secret", loginMsgTemplate)

	_, err := u.ParseToken(ctx, "not-a-token")
	assert.Error(t, err)
}
