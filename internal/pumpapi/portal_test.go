package pumpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blinkforge/blinkforge/internal/pumpfun"
)

func serializedTx(t *testing.T, payer solana.PublicKey, instructions []solana.Instruction) []byte {
	t.Helper()

	tx, err := solana.NewTransaction(instructions, solana.Hash{}, solana.TransactionPayer(payer))
	require.NoError(t, err)
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw
}

func TestBuildCreateTransaction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trade-local", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, payer.String(), payload["publicKey"])
		assert.Equal(t, "create", payload["action"])
		assert.Equal(t, mint.String(), payload["mint"])
		assert.Equal(t, "false", payload["denominatedInSol"])
		assert.Equal(t, 1000.0, payload["amount"])

		tokenMetadata, ok := payload["tokenMetadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Test", tokenMetadata["name"])
		assert.Equal(t, "TST", tokenMetadata["symbol"])
		assert.Equal(t, "ipfs://meta", tokenMetadata["uri"])

		w.Write([]byte("raw-transaction-bytes"))
	}))
	defer server.Close()

	client := NewPortalClient(server.URL, zap.NewNop())
	raw, err := client.BuildCreateTransaction(context.Background(), CreateRequest{
		Payer:  payer,
		Mint:   mint,
		Name:   "Test",
		Symbol: "TST",
		URI:    "ipfs://meta",
		Amount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-transaction-bytes"), raw)
}

func TestBuildCreateTransactionUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewPortalClient(server.URL, zap.NewNop())
	_, err := client.BuildCreateTransaction(context.Background(), CreateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExtractInstructionForProgram(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	global := solana.NewWallet().PublicKey()
	wanted := solana.NewInstruction(
		pumpfun.ProgramID,
		[]*solana.AccountMeta{
			{PublicKey: mint, IsSigner: true, IsWritable: true},
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: global, IsSigner: false, IsWritable: false},
		},
		[]byte{1, 2, 3, 4},
	)
	extraneous := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
		},
		[]byte{9, 9},
	)

	raw := serializedTx(t, payer, []solana.Instruction{extraneous, wanted})

	extracted, err := ExtractInstructionForProgram(raw, pumpfun.ProgramID)
	require.NoError(t, err)

	assert.Equal(t, pumpfun.ProgramID, extracted.ProgramID())

	data, err := extracted.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	accounts := extracted.Accounts()
	require.Len(t, accounts, 3)
	assert.Equal(t, mint, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, payer, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, global, accounts[2].PublicKey)
	assert.False(t, accounts[2].IsSigner)
	assert.False(t, accounts[2].IsWritable)
}

func TestExtractInstructionForProgramAbsent(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	transfer := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
		},
		[]byte{2},
	)

	raw := serializedTx(t, payer, []solana.Instruction{transfer})

	_, err := ExtractInstructionForProgram(raw, pumpfun.ProgramID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no instruction for program")
}

func TestExtractInstructionForProgramGarbage(t *testing.T) {
	_, err := ExtractInstructionForProgram([]byte("not a transaction"), pumpfun.ProgramID)
	require.Error(t, err)
}
