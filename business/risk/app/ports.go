package app

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/liquidity-vector/business/risk/domain"
	"github.com/fd1az/liquidity-vector/internal/chain"
)

// TVLSource lists the bridges known to the TVL aggregator.
type TVLSource interface {
	BridgeVolumes(ctx context.Context) ([]domain.BridgeVolume, error)
}

// ContractExplorer reads verification and creation data of a contract.
// CreatedAt is left zero; BlockClock resolves it from CreationTx.
type ContractExplorer interface {
	Contract(ctx context.Context, c chain.Chain, addr common.Address) (domain.ContractInfo, error)
}

// BlockClock returns the time of the block a transaction was mined in.
type BlockClock interface {
	TxTime(ctx context.Context, c chain.Chain, hash common.Hash) (time.Time, error)
}

// ExploitDB answers from the curated incident list. It never fails.
type ExploitDB interface {
	History(protocol string) domain.ExploitHistory
}
