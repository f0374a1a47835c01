package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidChain:    "Unsupported chain",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",
	CodeInvalidResponse:      "Unexpected response from upstream",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeDependencyUnavailable: "Required dependency unavailable",

	CodeRouteUnavailable:      "No bridge route available",
	CodeInsufficientLiquidity: "Insufficient bridge liquidity for amount",

	CodeRPCConnectionFailed: "Failed to connect to chain RPC",
	CodeRPCError:            "Chain RPC call failed",
	CodeGasEstimationFailed: "Gas estimation failed",

	CodePriceFetchFailed:    "Failed to fetch token price",
	CodeQuoteFetchFailed:    "Failed to fetch bridge quote",
	CodePoolsFetchFailed:    "Failed to fetch yield pools",
	CodeTVLFetchFailed:      "Failed to fetch bridge TVL",
	CodeExplorerFetchFailed: "Failed to query block explorer",

	CodeCacheUnavailable: "Shared cache unavailable",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
