package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkforge/blinkforge/internal/activation"
	"github.com/blinkforge/blinkforge/internal/config"
	"github.com/blinkforge/blinkforge/internal/launch"
	"github.com/blinkforge/blinkforge/internal/logger"
	"github.com/blinkforge/blinkforge/internal/metadata"
	"github.com/blinkforge/blinkforge/internal/resolver"
	"github.com/blinkforge/blinkforge/internal/storage/models"
)

type fakeResolver struct {
	result *resolver.RouteResult
	err    error
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, _, _ string, _ float64) (*resolver.RouteResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeGate struct {
	active      bool
	token       *models.Token
	err         error
	activateErr error
}

func (f *fakeGate) IsActive(_ context.Context, _ string) (bool, *models.Token, error) {
	return f.active, f.token, f.err
}

func (f *fakeGate) Activate(_ context.Context, address string, _ activation.Proof) (*models.Token, error) {
	if f.activateErr != nil {
		return nil, f.activateErr
	}
	return &models.Token{Address: address, IsActive: true}, nil
}

type fakeMetadata struct {
	meta *metadata.TokenMetadata
	err  error
}

func (f *fakeMetadata) GetTokenMetadata(_ context.Context, _ solana.PublicKey) (*metadata.TokenMetadata, error) {
	return f.meta, f.err
}

type fakeAssembler struct {
	result *launch.Result
	err    error
	params launch.Params
}

func (f *fakeAssembler) Assemble(_ context.Context, params launch.Params) (*launch.Result, error) {
	f.params = params
	return f.result, f.err
}

type fakeUploader struct {
	status int
	body   []byte
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, _ string, _ io.Reader) (int, []byte, error) {
	return f.status, f.body, f.err
}

type fakeChainClient struct {
	curveExists bool
}

func (f *fakeChainClient) GetAccountInfo(_ context.Context, _ solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if !f.curveExists {
		return nil, nil
	}
	raw := make([]byte, 49)
	binary.LittleEndian.PutUint64(raw[8:16], 1_000)
	binary.LittleEndian.PutUint64(raw[16:24], 1_000)

	var data rpc.DataBytesOrJSON
	encoded := fmt.Sprintf(`[%q,"base64"]`, base64.StdEncoding.EncodeToString(raw))
	if err := json.Unmarshal([]byte(encoded), &data); err != nil {
		return nil, err
	}
	return &rpc.GetAccountInfoResult{
		Value: &rpc.Account{Data: &data},
	}, nil
}

func (f *fakeChainClient) GetRecentBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()

	log, err := logger.New(&logger.Config{
		LogFile:     filepath.Join(t.TempDir(), "test.log"),
		Development: true,
	})
	require.NoError(t, err)

	return New(&config.Config{ListenAddr: ":0"}, log, deps)
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestDescribeAction(t *testing.T) {
	s := newTestServer(t, Deps{
		Metadata: &fakeMetadata{meta: &metadata.TokenMetadata{
			Name:        "Test Token",
			Symbol:      "TEST",
			Image:       "https://cdn.example/test.png",
			Description: "a token",
		}},
		Client: &fakeChainClient{curveExists: true},
	})

	mint := solana.NewWallet().PublicKey().String()
	rec := doRequest(t, s, http.MethodGet, "/actions/"+mint, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ActionGetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Test Token (TEST)", resp.Title)
	assert.Equal(t, "Buy TEST", resp.Label)
	require.Len(t, resp.Links.Actions, 4)
	assert.Contains(t, resp.Links.Actions[0].Href, "amount=0.1")
	assert.Contains(t, resp.Links.Actions[3].Href, "amount={amount}")
	require.Len(t, resp.Links.Actions[3].Parameters, 1)
	assert.Equal(t, "amount", resp.Links.Actions[3].Parameters[0].Name)
}

func TestDescribeActionInvalidAddress(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec := doRequest(t, s, http.MethodGet, "/actions/not-a-mint", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Kind)
}

func TestDescribeActionUntradable(t *testing.T) {
	s := newTestServer(t, Deps{
		Metadata: &fakeMetadata{meta: &metadata.TokenMetadata{Symbol: "TEST"}},
		Client:   &fakeChainClient{curveExists: false},
	})

	rec := doRequest(t, s, http.MethodGet, "/actions/"+solana.NewWallet().PublicKey().String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_tradable", decodeError(t, rec).Kind)
}

func TestExecuteAction(t *testing.T) {
	res := &fakeResolver{result: &resolver.RouteResult{
		TransactionBase64: "dHgtYnl0ZXM=",
		Route:             resolver.RouteBondingCurve,
	}}
	s := newTestServer(t, Deps{Resolver: res})

	mint := solana.NewWallet().PublicKey().String()
	buyer := solana.NewWallet().PublicKey().String()
	body := strings.NewReader(fmt.Sprintf(`{"account":%q}`, buyer))

	rec := doRequest(t, s, http.MethodPost, "/actions/"+mint+"?action=buy&amount=0.5", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp actionPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dHgtYnl0ZXM=", resp.Transaction)
	assert.Contains(t, resp.Message, "0.5 SOL")
	assert.Contains(t, resp.Message, "Pump.fun")
	assert.Equal(t, "transaction", resp.Type)
	assert.Equal(t, 1, res.calls)
}

func TestExecuteActionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *resolver.Error
		wantStatus int
	}{
		{"invalid input", &resolver.Error{Kind: resolver.KindInvalidInput, Message: "bad address"}, http.StatusBadRequest},
		{"not tradable", &resolver.Error{Kind: resolver.KindNotTradable, Message: "no curve"}, http.StatusNotFound},
		{"upstream", &resolver.Error{Kind: resolver.KindUpstream, Message: "rpc down"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Deps{Resolver: &fakeResolver{err: tt.err}})

			body := strings.NewReader(fmt.Sprintf(`{"account":%q}`, solana.NewWallet().PublicKey().String()))
			rec := doRequest(t, s, http.MethodPost,
				"/actions/"+solana.NewWallet().PublicKey().String()+"?action=buy&amount=0.1", body)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, string(tt.err.Kind), decodeError(t, rec).Kind)
		})
	}
}

func TestExecuteActionUnsupportedAction(t *testing.T) {
	res := &fakeResolver{}
	s := newTestServer(t, Deps{Resolver: res})

	body := strings.NewReader(`{"account":"x"}`)
	rec := doRequest(t, s, http.MethodPost,
		"/actions/"+solana.NewWallet().PublicKey().String()+"?action=sell&amount=0.1", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, res.calls)
}

func TestTokenCheck(t *testing.T) {
	token := &models.Token{Address: solana.NewWallet().PublicKey().String(), IsActive: true}
	s := newTestServer(t, Deps{Gate: &fakeGate{active: true, token: token}})

	rec := doRequest(t, s, http.MethodGet, "/tokens/check?address="+token.Address, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsActive)
	require.NotNil(t, resp.Token)
	assert.Equal(t, token.Address, resp.Token.Address)
}

func TestTokenActivateRejectedProof(t *testing.T) {
	s := newTestServer(t, Deps{Gate: &fakeGate{activateErr: activation.ErrProofRejected}})

	body := strings.NewReader(fmt.Sprintf(`{"address":%q}`, solana.NewWallet().PublicKey().String()))
	rec := doRequest(t, s, http.MethodPost, "/tokens/activate", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenActivate(t *testing.T) {
	s := newTestServer(t, Deps{Gate: &fakeGate{}})

	address := solana.NewWallet().PublicKey().String()
	body := strings.NewReader(fmt.Sprintf(`{"address":%q}`, address))
	rec := doRequest(t, s, http.MethodPost, "/tokens/activate", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenActivateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Token)
	assert.True(t, resp.Token.IsActive)
}

func TestIPFSProxyPassThrough(t *testing.T) {
	upstream := []byte(`{"metadataUri":"ipfs://abc"}`)
	s := newTestServer(t, Deps{Uploader: &fakeUploader{status: http.StatusOK, body: upstream}})

	rec := doRequest(t, s, http.MethodPost, "/pump/ipfs", bytes.NewReader([]byte("multipart")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, upstream, rec.Body.Bytes())
}

func TestLaunch(t *testing.T) {
	mint, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	assembler := &fakeAssembler{result: &launch.Result{
		TransactionBase64:      "dHgtYnl0ZXM=",
		Mint:                   mint,
		AssociatedTokenAccount: solana.NewWallet().PublicKey(),
		MetadataURI:            "ipfs://meta",
	}}
	s := newTestServer(t, Deps{Assembler: assembler})

	payload := map[string]any{
		"creator":      solana.NewWallet().PublicKey().String(),
		"name":         "Test Token",
		"symbol":       "TEST",
		"image":        "cG5nLWJ5dGVz",
		"devBuyTokens": 1000.0,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := doRequest(t, s, http.MethodPost, "/launch", bytes.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp launchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, mint.PublicKey().String(), resp.Mint)
	assert.Equal(t, "ipfs://meta", resp.MetadataURI)
	assert.Equal(t, []byte("png-bytes"), assembler.params.Image)
	assert.Equal(t, 1000.0, assembler.params.DevBuyTokens)
}

func TestLaunchInvalidImage(t *testing.T) {
	s := newTestServer(t, Deps{Assembler: &fakeAssembler{}})

	payload := `{"creator":"` + solana.NewWallet().PublicKey().String() + `","name":"T","symbol":"T","image":"!!!"}`
	rec := doRequest(t, s, http.MethodPost, "/launch", strings.NewReader(payload))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Kind)
}
