// Package gateway is the typed client for the remote kiosco API. The server
// is the system of record; this package only speaks request/response and
// never touches the local store.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lujangrego99/kiosco-sub000/internal/dto"
	"github.com/lujangrego99/kiosco-sub000/internal/infra"
)

// RemoteGateway exposes the remote endpoints the sync subsystem consumes.
// The sync engine and checkout depend on this interface, not on the HTTP
// implementation, so tests can swap in stubs.
type RemoteGateway interface {
	ListProductos(ctx context.Context) ([]dto.ProductoRemoto, error)
	ListCategorias(ctx context.Context) ([]dto.CategoriaRemota, error)
	CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaRemota, error)
	UltimoNumero(ctx context.Context) (int, error)
}

// apiClient talks JSON over HTTP to the kiosco backend. Calls run through a
// circuit breaker so a dead uplink fast-fails instead of serially burning the
// HTTP timeout across a long pending queue.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *infra.CircuitBreaker
}

// New builds the HTTP-backed gateway. token may be empty for unauthenticated
// deployments; auth acquisition itself lives outside this subsystem.
func New(baseURL, token string, timeout time.Duration) RemoteGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &apiClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    infra.NewCircuitBreaker(infra.DefaultCBConfig()),
	}
}

func (c *apiClient) ListProductos(ctx context.Context) ([]dto.ProductoRemoto, error) {
	var productos []dto.ProductoRemoto
	if err := c.do(ctx, http.MethodGet, "/productos", nil, &productos); err != nil {
		return nil, err
	}
	return productos, nil
}

func (c *apiClient) ListCategorias(ctx context.Context) ([]dto.CategoriaRemota, error) {
	var categorias []dto.CategoriaRemota
	if err := c.do(ctx, http.MethodGet, "/categorias", nil, &categorias); err != nil {
		return nil, err
	}
	return categorias, nil
}

func (c *apiClient) CrearVenta(ctx context.Context, req dto.CrearVentaRequest) (*dto.VentaRemota, error) {
	var venta dto.VentaRemota
	if err := c.do(ctx, http.MethodPost, "/ventas", req, &venta); err != nil {
		return nil, err
	}
	return &venta, nil
}

func (c *apiClient) UltimoNumero(ctx context.Context) (int, error) {
	var resp dto.UltimoNumeroResponse
	if err := c.do(ctx, http.MethodGet, "/ventas/ultimo-numero", nil, &resp); err != nil {
		return 0, err
	}
	return resp.ProximoNumero, nil
}

// apiError is the error envelope the backend returns on non-2xx responses.
type apiError struct {
	Message string `json:"message"`
}

// do performs one request through the circuit breaker. A 2xx with a body is
// decoded into out; 204 is success with no body. Non-2xx responses carry a
// JSON {"message": ...}; anything unparseable degrades to a generic
// connection error.
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	return c.breaker.Execute(func() error {
		var reader io.Reader
		if body != nil {
			encoded, err := json.Marshal(body)
			if err != nil {
				return fmt.Errorf("gateway: marshal %s %s: %w", method, path, err)
			}
			reader = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return fmt.Errorf("gateway: create request %s %s: %w", method, path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("gateway: %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			var apiErr apiError
			if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
				return fmt.Errorf("gateway: %s %s: %s", method, path, apiErr.Message)
			}
			return fmt.Errorf("gateway: %s %s: error de conexión con el servidor (HTTP %d)", method, path, resp.StatusCode)
		}

		if resp.StatusCode == http.StatusNoContent || out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("gateway: decode %s %s: %w", method, path, err)
		}
		return nil
	})
}
