package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidChain    Code = "INVALID_CHAIN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"
	CodeInvalidResponse      Code = "INVALID_RESPONSE"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Route analysis error codes
const (
	// A dependency the analysis cannot do without failed (gas estimation).
	CodeDependencyUnavailable Code = "DEPENDENCY_UNAVAILABLE"

	// Bridge routing
	CodeRouteUnavailable      Code = "ROUTE_UNAVAILABLE"
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"

	// Chain RPC
	CodeRPCConnectionFailed Code = "RPC_CONNECTION_FAILED"
	CodeRPCError            Code = "RPC_ERROR"
	CodeGasEstimationFailed Code = "GAS_ESTIMATION_FAILED"

	// Upstream data sources
	CodePriceFetchFailed    Code = "PRICE_FETCH_FAILED"
	CodeQuoteFetchFailed    Code = "QUOTE_FETCH_FAILED"
	CodePoolsFetchFailed    Code = "POOLS_FETCH_FAILED"
	CodeTVLFetchFailed      Code = "TVL_FETCH_FAILED"
	CodeExplorerFetchFailed Code = "EXPLORER_FETCH_FAILED"

	// Shared cache
	CodeCacheUnavailable Code = "CACHE_UNAVAILABLE"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
