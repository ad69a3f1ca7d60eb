package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

func init() {
	// El backend intercambia montos como números JSON.
	decimal.MarshalJSONWithoutQuotes = true
}

const requestIDHeader = "X-Request-ID"

// TokenSource entrega el token bearer vigente; se consulta en cada petición.
type TokenSource interface {
	Token() string
}

// Config configuración del gateway.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway envuelve todas las llamadas autenticadas al backend: URL base, JSON, token bearer,
// X-Request-ID y traducción uniforme de errores a *domain.Error. No reintenta.
type Gateway struct {
	http           *resty.Client
	tokens         TokenSource
	log            *logger.Logger
	onUnauthorized func(ctx context.Context)
}

// NewGateway construye el gateway.
func NewGateway(cfg Config, tokens TokenSource, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)

	return &Gateway{
		http:   httpClient,
		tokens: tokens,
		log:    log.Component("api"),
	}
}

// OnUnauthorized registra la acción ante un 401 (cerrar la sesión local).
// No se dispara para llamadas anónimas como el login.
func (g *Gateway) OnUnauthorized(fn func(ctx context.Context)) {
	g.onUnauthorized = fn
}

type anonymousKey struct{}

// anonymous marca la llamada como sin sesión: no lleva token y un 401 es solo la respuesta.
func anonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

func (g *Gateway) request(ctx context.Context) *resty.Request {
	req := g.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString())
	if g.tokens != nil && !isAnonymous(ctx) {
		if tok := g.tokens.Token(); tok != "" {
			req.SetAuthToken(tok)
		}
	}
	return req
}

func (g *Gateway) do(ctx context.Context, method, p string, query url.Values, body, result any) error {
	req := g.request(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := g.execute(req, method, p)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return g.errorFromResponse(ctx, resp)
	}
	return nil
}

func (g *Gateway) execute(req *resty.Request, method, p string) (*resty.Response, error) {
	start := time.Now()
	resp, err := req.Execute(method, p)
	if err != nil {
		g.log.Warn().Err(err).Str("method", method).Str("path", p).Msg("falla de transporte")
		return nil, &domain.Error{
			Kind:    domain.KindNetwork,
			Message: "no se pudo contactar al servidor",
			Err:     fmt.Errorf("%w: %w", domain.ErrNetwork, err),
		}
	}
	g.log.Debug().
		Str("method", method).
		Str("path", p).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Msg("api")
	return resp, nil
}

// Get GET path?query -> result.
func (g *Gateway) Get(ctx context.Context, p string, query url.Values, result any) error {
	return g.do(ctx, http.MethodGet, p, query, nil, result)
}

// Post POST path body -> result.
func (g *Gateway) Post(ctx context.Context, p string, body, result any) error {
	return g.do(ctx, http.MethodPost, p, nil, body, result)
}

// Put PUT path body -> result.
func (g *Gateway) Put(ctx context.Context, p string, body, result any) error {
	return g.do(ctx, http.MethodPut, p, nil, body, result)
}

// Patch PATCH path body -> result.
func (g *Gateway) Patch(ctx context.Context, p string, body, result any) error {
	return g.do(ctx, http.MethodPatch, p, nil, body, result)
}

// Delete DELETE path.
func (g *Gateway) Delete(ctx context.Context, p string) error {
	return g.do(ctx, http.MethodDelete, p, nil, nil, nil)
}

// Download descarga un archivo binario (plantillas CSV).
func (g *Gateway) Download(ctx context.Context, p string) (*dto.Blob, error) {
	resp, err := g.execute(g.request(ctx).SetHeader("Accept", "*/*"), http.MethodGet, p)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, g.errorFromResponse(ctx, resp)
	}
	name := path.Base(p)
	if cd := resp.Header().Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = params["filename"]
		}
	}
	return &dto.Blob{
		Name:        name,
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

// Upload envía un archivo como multipart (campo "file") y decodifica la respuesta en result.
func (g *Gateway) Upload(ctx context.Context, p, fileName string, r io.Reader, result any) error {
	req := g.request(ctx).SetFileReader("file", fileName, r)
	if result != nil {
		req.SetResult(result)
	}
	resp, err := g.execute(req, http.MethodPost, p)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return g.errorFromResponse(ctx, resp)
	}
	return nil
}

// errorBody cuerpo de error del backend: {code, message} o {error}.
type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

type codeMapping struct {
	kind domain.Kind
	err  error
}

// Códigos estructurados del backend con significado de negocio.
var knownCodes = map[string]codeMapping{
	"INSUFFICIENT_STOCK": {domain.KindBusiness, domain.ErrInsufficientStock},
	"SAME_BRANCH":        {domain.KindBusiness, domain.ErrSameBranch},
	"ALREADY_RECEIVED":   {domain.KindConflict, domain.ErrAlreadyReceived},
	"SESSION_COMPLETED":  {domain.KindConflict, domain.ErrSessionCompleted},
	"INVALID_TRANSITION": {domain.KindConflict, domain.ErrInvalidTransition},
	"DUPLICATE":          {domain.KindConflict, domain.ErrDuplicate},
}

func (g *Gateway) errorFromResponse(ctx context.Context, resp *resty.Response) error {
	status := resp.StatusCode()
	var body errorBody
	if raw := bytes.TrimSpace(resp.Body()); len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	e := &domain.Error{
		Code:    strings.ToUpper(body.Code),
		Message: msg,
		Status:  status,
		Fields:  body.Fields,
	}
	if m, ok := knownCodes[e.Code]; ok {
		e.Kind, e.Err = m.kind, m.err
		return e
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind, e.Err = domain.KindUnauthorized, domain.ErrUnauthorized
		if g.onUnauthorized != nil && !isAnonymous(ctx) {
			g.onUnauthorized(ctx)
		}
	case status == http.StatusForbidden:
		e.Kind, e.Err = domain.KindUnauthorized, domain.ErrForbidden
	case status == http.StatusNotFound:
		e.Kind, e.Err = domain.KindNotFound, domain.ErrNotFound
	case status == http.StatusConflict:
		e.Kind, e.Err = domain.KindConflict, domain.ErrConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind, e.Err = domain.KindValidation, domain.ErrInvalidInput
	default:
		e.Kind, e.Err = domain.KindServer, domain.ErrServer
	}
	return e
}

// list acepta tanto un arreglo JSON como un sobre {"items": [...]}.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, (*[]T)(l))
	}
	var env struct {
		Items []T `json:"items"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	*l = env.Items
	return nil
}
