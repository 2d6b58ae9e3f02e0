package models

import "github.com/shopspring/decimal"

// PlatformStats aggregates platform-wide funding figures
type PlatformStats struct {
	TotalDreams     int64           `json:"totalDreams"`
	TotalRaised     decimal.Decimal `json:"totalRaised"`
	ActiveDonors    int64           `json:"activeDonors"`
	CompletedDreams int64           `json:"completedDreams"`
}

// TransactionInfo summarizes a transaction receipt read from the chain
type TransactionInfo struct {
	TxHash      string `json:"txHash"`
	From        string `json:"from"`
	Value       string `json:"value"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
	Success     bool   `json:"success"`
}
