package request

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Estrutura que contém as configurações da requisição
type RequestOptions struct {
	Timeout    time.Duration
	Body       io.Reader
	Headers    map[string]string
	Ctx        context.Context
	HTTPClient *http.Client
	BasicAuth  *BasicAuth
}

// BasicAuth guarda as credenciais HTTP Basic
type BasicAuth struct {
	Username string
	Password string
}

// Tipo de função para aplicar opções à RequestOptions
type RequestOption func(*RequestOptions)

// WithTimeout define um tempo limite para a requisição
func WithTimeout(timeout time.Duration) RequestOption {
	return func(o *RequestOptions) {
		o.Timeout = timeout
	}
}

// WithBody define um corpo para a requisição
func WithBody(body io.Reader) RequestOption {
	return func(o *RequestOptions) {
		o.Body = body
	}
}

// WithHeader adiciona um cabeçalho à requisição
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// Adiciona múltiplos cabeçalhos de uma vez
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithContext permite definir um contexto para a requisição
func WithContext(ctx context.Context) RequestOption {
	return func(o *RequestOptions) {
		o.Ctx = ctx
	}
}

// WithBasicAuth autentica a requisição com HTTP Basic
func WithBasicAuth(username, password string) RequestOption {
	return func(o *RequestOptions) {
		o.BasicAuth = &BasicAuth{Username: username, Password: password}
	}
}

// WithHTTPClient reaproveita um cliente HTTP existente.
// O timeout do cliente informado tem precedência sobre WithTimeout.
func WithHTTPClient(client *http.Client) RequestOption {
	return func(o *RequestOptions) {
		o.HTTPClient = client
	}
}

// Execute a HTTP request com opções personalizadas
func Do(method, url string, opts ...RequestOption) (*http.Response, error) {
	// Configuração padrão
	options := &RequestOptions{
		Timeout: 10 * time.Second, // Default de 10s
		Ctx:     context.Background(),
		Body:    nil,
	}

	// Aplicar todas as opções passadas
	for _, opt := range opts {
		opt(options)
	}

	// Sem cliente informado, cria um com o timeout configurado
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: options.Timeout}
	}

	// Criar a requisição
	req, err := http.NewRequestWithContext(options.Ctx, method, url, options.Body)
	if err != nil {
		return nil, err
	}

	// Adicionar cabeçalhos
	for k, v := range options.Headers {
		req.Header.Set(k, v)
	}

	if options.BasicAuth != nil {
		req.SetBasicAuth(options.BasicAuth.Username, options.BasicAuth.Password)
	}

	return client.Do(req)
}
