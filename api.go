package snapscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/jfxdev/go-snapscan/request"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxErrorBodyBytes caps how much of a non-2xx body is read for its message.
const maxErrorBodyBytes = 64 << 10

// Int returns a pointer to v, for Pagination fields.
func Int(v int) *int {
	return &v
}

// Values encodes the present fields as query parameters.
func (p *Pagination) Values() url.Values {
	params := url.Values{}
	if p == nil {
		return params
	}
	if p.Page != nil {
		params.Set("page", strconv.Itoa(*p.Page))
	}
	if p.PerPage != nil {
		params.Set("perPage", strconv.Itoa(*p.PerPage))
	}
	if p.Offset != nil {
		params.Set("offset", strconv.Itoa(*p.Offset))
	}
	return params
}

// errorBody is the error payload of the merchant API.
type errorBody struct {
	Message *string `json:"message"`
}

// Get performs an authenticated GET against the merchant API and decodes the
// response into out. Pass a pointer to an any to receive the generic structure.
func (c *Client) Get(ctx context.Context, endpoint string, pagination *Pagination, out any) error {
	endpointURL := endpoint
	if query := pagination.Values().Encode(); query != "" {
		endpointURL = fmt.Sprintf("%s?%s", endpoint, query)
	}
	return c.do(ctx, http.MethodGet, endpointURL, nil, out)
}

// Post serializes payload as JSON, POSTs it to the merchant API and decodes
// the response into out.
func (c *Client) Post(ctx context.Context, endpoint string, payload any, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, payload, out)
}

// do sends a request with a JSON body when payload is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, out any) error {
	config, logger, _ := c.snapshot()
	if config.APIKey == "" {
		return configurationError("SetAPIKey")
	}

	requestID := uuid.NewString()
	endpointURL := fmt.Sprintf("%s%s/%s", config.BaseURL, apiPath, endpoint)

	headers := map[string]string{
		"Accept": "application/json",
	}
	opts := []request.RequestOption{
		request.WithContext(ctx),
		request.WithBasicAuth(config.APIKey, ""),
		request.WithHeader("X-Request-Id", requestID),
	}
	if config.HTTPClient != nil {
		opts = append(opts, request.WithHTTPClient(config.HTTPClient))
	} else {
		opts = append(opts, request.WithTimeout(config.RequestTimeout))
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return NewError(ErrorCodeEncode, "error encoding request payload", 0, err)
		}
		headers["Content-Type"] = "application/json"
		opts = append(opts, request.WithBody(bytes.NewReader(body)))
	}
	opts = append(opts, request.WithHeaders(headers))

	logger.Debug().
		Str("method", method).
		Str("url", endpointURL).
		Str("request_id", requestID).
		Msg("sending request")

	resp, err := request.Do(method, endpointURL, opts...)
	if err != nil {
		classified := ClassifyError(err)
		logger.Debug().Err(err).Str("request_id", requestID).Str("code", string(classified.Code)).Msg("request failed")
		return classified
	}
	defer resp.Body.Close()

	logger.Debug().
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Msg("received response")

	return handleResponse(resp, out)
}

// handleResponse classifies resp by status range and decodes its body.
// Error bodies are read up to maxErrorBodyBytes.
func handleResponse(resp *http.Response, out any) error {
	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	var body io.Reader = resp.Body
	if !success {
		body = io.LimitReader(resp.Body, maxErrorBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return NewError(ErrorCodeTransport, "error reading response body", resp.StatusCode, err)
	}

	if success {
		if len(bytes.TrimSpace(data)) == 0 {
			return NewError(ErrorCodeDecode, MessageDecodeError, resp.StatusCode, io.ErrUnexpectedEOF)
		}
		if err := json.Unmarshal(data, out); err != nil {
			return NewError(ErrorCodeDecode, MessageDecodeError, resp.StatusCode, err)
		}
		return nil
	}

	return classifyStatus(resp.StatusCode, errorMessage(resp.StatusCode, data))
}

// errorMessage extracts the "message" field of an error body, or "" when
// the status is outside the error ranges or no usable message exists.
func errorMessage(statusCode int, data []byte) string {
	if statusCode < 400 || statusCode >= 600 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Message == nil {
		return ""
	}
	return *body.Message
}
