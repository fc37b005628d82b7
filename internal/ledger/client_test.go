package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCertificateRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req issueRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, uint64(7), req.ProjectID)
		assert.Equal(t, "sha256:abc", req.MetadataURI)
		_, _ = w.Write([]byte(`{"tx_hash":"0xdeadbeef","token_id":"1234"}`))
	}))
	defer srv.Close()

	cert, err := New(srv.URL).IssueCertificate(context.Background(), 7, "sha256:abc")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeef", cert.TxRef)
	assert.Equal(t, "1234", cert.TokenID)
}

func TestIssueCertificateFallsBackOnIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tx_hash":"0xdeadbeef"}`)) // token_id missing
	}))
	defer srv.Close()

	cert, err := New(srv.URL).IssueCertificate(context.Background(), 7, "sha256:abc")
	require.NoError(t, err)
	assertMockCertificate(t, cert, 7)
}

func TestIssueCertificateWithoutURL(t *testing.T) {
	cert, err := New("").IssueCertificate(context.Background(), 9, "mock:metadata")
	require.NoError(t, err)
	assertMockCertificate(t, cert, 9)
}

func assertMockCertificate(t *testing.T, cert Certificate, projectID uint64) {
	t.Helper()
	assert.True(t, strings.HasPrefix(cert.TxRef, fmt.Sprintf("mock_tx_%d_", projectID)), "tx ref %q", cert.TxRef)
	assert.NotEmpty(t, cert.TokenID)
}
