package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Storefront/internal/catalog"
)

func newCatalog(t *testing.T) (*httptest.Server, catalog.Product) {
	t.Helper()

	svc := catalog.NewService(catalog.NewKVStore(catalog.NewMemStorage()), zap.NewNop(), nil)
	p, err := svc.AddProduct(t.Context(), catalog.ProductDraft{
		Name: "Chair", Seller: "acme-1", Stock: "5", Price: "20", Category: "Furniture",
	})
	require.NoError(t, err)

	ts := httptest.NewServer(catalog.NewHandler(&catalog.Server{Service: svc}, catalog.HTTPDeps{}))
	t.Cleanup(ts.Close)
	return ts, p
}

func TestRun_GetListSearch(t *testing.T) {
	ts, p := newCatalog(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-url", ts.URL, "get", p.ID}, &out))
	assert.Contains(t, out.String(), `"name": "Chair"`)

	out.Reset()
	require.NoError(t, run([]string{"-url", ts.URL, "list", "-max", "10"}, &out))
	var listed []catalog.Product
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	assert.Empty(t, listed)

	out.Reset()
	require.NoError(t, run([]string{"-url", ts.URL, "search", "cha"}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &listed))
	assert.Len(t, listed, 1)

	err := run([]string{"-url", ts.URL, "get", "missing"}, &out)
	assert.ErrorContains(t, err, "not found")
}

func TestRun_Token(t *testing.T) {
	t.Setenv("ADMIN_JWT_SECRET", "0123456789abcdef0123456789abcdef")

	var out bytes.Buffer
	require.NoError(t, run([]string{"token", "ops"}, &out))

	c, err := catalog.NewTokenMaker("0123456789abcdef0123456789abcdef").Parse(string(bytes.TrimSpace(out.Bytes())))
	require.NoError(t, err)
	assert.Equal(t, catalog.RoleAdmin, c.Role)
}

func TestRun_Usage(t *testing.T) {
	assert.Error(t, run(nil, &bytes.Buffer{}))
	assert.Error(t, run([]string{"frobnicate"}, &bytes.Buffer{}))
}
