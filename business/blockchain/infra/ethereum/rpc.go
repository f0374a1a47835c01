// Package ethereum provides EVM JSON-RPC adapters, one client per chain.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/liquidity-vector/business/blockchain/app"
	"github.com/fd1az/liquidity-vector/business/blockchain/domain"
	"github.com/fd1az/liquidity-vector/internal/apperror"
	"github.com/fd1az/liquidity-vector/internal/chain"
	"github.com/fd1az/liquidity-vector/internal/logger"
)

const (
	tracerName = "github.com/fd1az/liquidity-vector/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/liquidity-vector/business/blockchain/infra/ethereum"
)

// ClientConfig holds configuration for one chain's RPC client.
type ClientConfig struct {
	Chain           chain.Chain
	URL             string
	Timeout         time.Duration // eth_gasPrice, eth_feeHistory, lookups
	EstimateTimeout time.Duration // eth_estimateGas
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(c chain.Chain, url string) ClientConfig {
	return ClientConfig{
		Chain:           c,
		URL:             url,
		Timeout:         3 * time.Second,
		EstimateTimeout: 2 * time.Second,
	}
}

type rpcMetrics struct {
	calls    metric.Int64Counter
	latency  metric.Float64Histogram
	gasPrice metric.Float64Gauge
}

func newRPCMetrics() (*rpcMetrics, error) {
	meter := otel.Meter(meterName)
	m := &rpcMetrics{}
	var err error

	m.calls, err = meter.Int64Counter(
		"rpc_calls_total",
		metric.WithDescription("JSON-RPC calls by chain, method and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	m.latency, err = meter.Float64Histogram(
		"rpc_call_duration_seconds",
		metric.WithDescription("JSON-RPC call latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.gasPrice, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Last observed gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Client implements app.RPC with go-ethereum's ethclient.
type Client struct {
	config  ClientConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *rpcMetrics

	mu  sync.Mutex
	eth *ethclient.Client
}

var _ app.RPC = (*Client)(nil)

// NewClient creates a client. The connection is dialed on first use.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.EstimateTimeout == 0 {
		cfg.EstimateTimeout = 2 * time.Second
	}

	m, err := newRPCMetrics()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Client{
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		metrics: m,
	}, nil
}

func (c *Client) conn(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		return c.eth, nil
	}

	eth, err := ethclient.DialContext(ctx, c.config.URL)
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCConnectionFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s rpc dial failed", c.config.Chain)))
	}
	c.eth = eth
	c.logger.Debug(ctx, "rpc connected", "chain", c.config.Chain)
	return eth, nil
}

// call runs fn under a deadline inside a span and records metrics.
func (c *Client) call(ctx context.Context, method string, timeout time.Duration, fn func(context.Context, *ethclient.Client) error) error {
	ctx, span := c.tracer.Start(ctx, "rpc."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("chain", c.config.Chain.String()),
			attribute.String("rpc.method", method),
		),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	eth, err := c.conn(ctx)
	if err == nil {
		err = fn(ctx, eth)
	}

	attrs := metric.WithAttributes(
		attribute.String("chain", c.config.Chain.String()),
		attribute.String("method", method),
		attribute.Bool("success", err == nil),
	)
	c.metrics.calls.Add(ctx, 1, attrs)
	c.metrics.latency.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, method+" failed")
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.New(apperror.CodeRPCError,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s %s", c.config.Chain, method)))
	}
	span.SetStatus(codes.Ok, "ok")
	return nil
}

// GasPrice implements app.RPC.
func (c *Client) GasPrice(ctx context.Context) (*big.Int, error) {
	var wei *big.Int
	err := c.call(ctx, "eth_gasPrice", c.config.Timeout, func(ctx context.Context, eth *ethclient.Client) error {
		var err error
		wei, err = eth.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	gwei, _ := chain.WeiToGwei(wei).Float64()
	c.metrics.gasPrice.Record(ctx, gwei, metric.WithAttributes(attribute.String("chain", c.config.Chain.String())))
	return wei, nil
}

// FeeHistory implements app.RPC.
func (c *Client) FeeHistory(ctx context.Context, blocks uint64, percentiles []float64) (domain.FeeHistory, error) {
	var out domain.FeeHistory
	err := c.call(ctx, "eth_feeHistory", c.config.Timeout, func(ctx context.Context, eth *ethclient.Client) error {
		h, err := eth.FeeHistory(ctx, blocks, nil, percentiles)
		if err != nil {
			return err
		}
		out = domain.FeeHistory{BaseFees: h.BaseFee, Rewards: h.Reward}
		return nil
	})
	return out, err
}

// EstimateGas implements app.RPC.
func (c *Client) EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error) {
	var gas uint64
	err := c.call(ctx, "eth_estimateGas", c.config.EstimateTimeout, func(ctx context.Context, eth *ethclient.Client) error {
		var err error
		gas, err = eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
		return err
	})
	if err != nil {
		return 0, apperror.New(apperror.CodeGasEstimationFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s estimate to %s", c.config.Chain, to.Hex())))
	}
	return gas, nil
}

// TxTime implements app.RPC. Only the fields needed are decoded, so nodes
// that omit optional header fields still work.
func (c *Client) TxTime(ctx context.Context, hash common.Hash) (time.Time, error) {
	var ts time.Time
	err := c.call(ctx, "tx_time", c.config.Timeout, func(ctx context.Context, eth *ethclient.Client) error {
		var tx struct {
			BlockNumber *hexutil.Big `json:"blockNumber"`
		}
		if err := eth.Client().CallContext(ctx, &tx, "eth_getTransactionByHash", hash); err != nil {
			return err
		}
		if tx.BlockNumber == nil {
			return ethereum.NotFound
		}

		var block struct {
			Timestamp hexutil.Uint64 `json:"timestamp"`
		}
		if err := eth.Client().CallContext(ctx, &block, "eth_getBlockByNumber", tx.BlockNumber, false); err != nil {
			return err
		}
		ts = time.Unix(int64(block.Timestamp), 0).UTC()
		return nil
	})
	return ts, err
}

// Close closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

// Pool holds one client per chain.
type Pool struct {
	clients map[chain.Chain]*Client
}

var _ app.RPCProvider = (*Pool)(nil)

// NewPool builds clients for every configured chain.
func NewPool(configs []ClientConfig, log logger.LoggerInterface) (*Pool, error) {
	p := &Pool{clients: make(map[chain.Chain]*Client, len(configs))}
	for _, cfg := range configs {
		client, err := NewClient(cfg, log)
		if err != nil {
			return nil, err
		}
		p.clients[cfg.Chain] = client
	}
	return p, nil
}

// RPC implements app.RPCProvider.
func (p *Pool) RPC(c chain.Chain) (app.RPC, error) {
	client, ok := p.clients[c]
	if !ok {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("no rpc configured for %s", c)))
	}
	return client, nil
}

// Close closes every client.
func (p *Pool) Close() {
	for _, c := range p.clients {
		c.Close()
	}
}
