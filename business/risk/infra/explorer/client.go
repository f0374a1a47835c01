// Package explorer adapts the Etherscan family of block explorer APIs.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/business/risk/app"
	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/httpclient"
)

const (
	tracerName   = "github.com/fd1az/liquidity-vector/business/risk/infra/explorer"
	providerName = "explorer"

	statusOK = "1"
)

// Config holds configuration for the explorer client.
type Config struct {
	// APIKeys are keyed by chain slug. A missing key sends an empty one,
	// which the public tiers accept at a lower rate.
	APIKeys map[string]string
	Timeout time.Duration
	// BaseURLs overrides the per chain API endpoint.
	BaseURLs map[chain.Chain]string
}

// Client implements app.ContractExplorer.
type Client struct {
	http   httpclient.Client
	cfg    Config
	tracer trace.Tracer
}

var _ app.ContractExplorer = (*Client)(nil)

// NewClient creates an explorer client. limiter may be nil.
func NewClient(cfg Config, limiter httpclient.Waiter) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName(providerName),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithHeaders(map[string]string{"Accept": "application/json"}),
		httpclient.WithStatusMapper(mapStatus),
	}
	if limiter != nil {
		opts = append(opts, httpclient.WithLimiter(limiter))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{http: client, cfg: cfg, tracer: otel.Tracer(tracerName)}, nil
}

func mapStatus(status int, _ []byte) error {
	if status == http.StatusTooManyRequests {
		return apperror.RateLimited(providerName)
	}
	return apperror.New(apperror.CodeExplorerFetchFailed,
		apperror.WithContext(fmt.Sprintf("explorer status %d", status)))
}

// envelope is the common response shape. Result is an array on success and
// a message string on failure.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type sourceCode struct {
	SourceCode      string `json:"SourceCode"`
	ContractName    string `json:"ContractName"`
	CompilerVersion string `json:"CompilerVersion"`
}

type creation struct {
	ContractAddress string `json:"contractAddress"`
	ContractCreator string `json:"contractCreator"`
	TxHash          string `json:"txHash"`
}

// Contract returns whether addr is verified on c's explorer, with its
// creation transaction when the explorer knows it. A failed creation lookup
// leaves CreationTx empty rather than failing the call.
func (c *Client) Contract(ctx context.Context, ch chain.Chain, addr common.Address) (domain.ContractInfo, error) {
	ctx, span := c.tracer.Start(ctx, "explorer.contract",
		trace.WithAttributes(
			attribute.String("chain", ch.String()),
			attribute.String("address", addr.Hex()),
		),
	)
	defer span.End()

	endpoint, err := c.endpoint(ch)
	if err != nil {
		span.RecordError(err)
		return domain.ContractInfo{}, err
	}

	var sources []sourceCode
	if err := c.call(ctx, ch, endpoint, map[string]string{
		"module":  "contract",
		"action":  "getsourcecode",
		"address": addr.Hex(),
	}, &sources); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "getsourcecode failed")
		return domain.ContractInfo{}, err
	}

	var info domain.ContractInfo
	if len(sources) > 0 {
		info.Verified = strings.TrimSpace(sources[0].SourceCode) != ""
		info.Name = sources[0].ContractName
		info.Compiler = sources[0].CompilerVersion
	}

	var created []creation
	err = c.call(ctx, ch, endpoint, map[string]string{
		"module":            "contract",
		"action":            "getcontractcreation",
		"contractaddresses": addr.Hex(),
	}, &created)
	switch {
	case err != nil:
		span.AddEvent("creation lookup failed", trace.WithAttributes(attribute.String("error", err.Error())))
	case len(created) > 0:
		info.CreationTx = created[0].TxHash
	}

	span.SetAttributes(
		attribute.Bool("verified", info.Verified),
		attribute.Bool("has_creation", info.CreationTx != ""),
	)
	span.SetStatus(codes.Ok, "fetched")
	return info, nil
}

func (c *Client) endpoint(ch chain.Chain) (string, error) {
	if u := c.cfg.BaseURLs[ch]; u != "" {
		return u, nil
	}
	if u := ch.Info().ExplorerAPI; u != "" {
		return u, nil
	}
	return "", apperror.Validation(apperror.CodeInvalidChain, ch.String())
}

func (c *Client) call(ctx context.Context, ch chain.Chain, endpoint string, params map[string]string, result any) error {
	var env envelope
	_, err := c.http.NewRequest().
		SetQueryParams(params).
		SetQueryParam("apikey", c.cfg.APIKeys[ch.Slug()]).
		SetResult(&env).
		Get(ctx, endpoint)
	if err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.External(apperror.CodeExplorerFetchFailed, ch.String(), err)
	}

	if env.Status != statusOK {
		var msg string
		_ = json.Unmarshal(env.Result, &msg)
		if strings.Contains(strings.ToLower(msg), "rate limit") {
			return apperror.RateLimited(providerName)
		}
		return apperror.New(apperror.CodeExplorerFetchFailed,
			apperror.WithContext(fmt.Sprintf("%s: %s %s", ch, env.Message, msg)))
	}

	if err := json.Unmarshal(env.Result, result); err != nil {
		return apperror.New(apperror.CodeInvalidResponse,
			apperror.WithCause(err),
			apperror.WithContext(providerName))
	}
	return nil
}
