package miner

// Result shapes of the validator node's JSON-RPC resources. Every field
// is decoded with mapstructure from the raw result payload.

type HeightInfo struct {
	Height int `mapstructure:"height"`
	// SyncHeight is only present while the node is syncing and behind.
	SyncHeight *int `mapstructure:"sync_height"`
}

// ValidatorHeight returns the node's own height, falling back to the
// chain height when no distinct sync height is reported.
func (hi HeightInfo) ValidatorHeight() int {
	if hi.SyncHeight != nil {
		return *hi.SyncHeight
	}
	return hi.Height
}

type LedgerEntry struct {
	Address            string  `mapstructure:"address"`
	Name               string  `mapstructure:"name"`
	OwnerAddress       string  `mapstructure:"owner_address"`
	TenurePenalty      float64 `mapstructure:"tenure_penalty"`
	DkgPenalty         float64 `mapstructure:"dkg_penalty"`
	PerformancePenalty float64 `mapstructure:"performance_penalty"`
	TotalPenalty       float64 `mapstructure:"total_penalty"`
	LastHeartbeat      float64 `mapstructure:"last_heartbeat"`
	Status             string  `mapstructure:"status"`
}

type ConsensusMember struct {
	Address        string  `mapstructure:"address"`
	Name           string  `mapstructure:"name"`
	Penalty        float64 `mapstructure:"penalty"`
	BBACompletions float64 `mapstructure:"bba_completions"`
	SeenVotes      float64 `mapstructure:"seen_votes"`
	LastBBA        float64 `mapstructure:"last_bba"`
	LastSeen       float64 `mapstructure:"last_seen"`
	Tenure         float64 `mapstructure:"tenure"`
}

type HbbftPerf struct {
	BlocksSinceEpoch int               `mapstructure:"blocks_since_epoch"`
	MaxSeen          int               `mapstructure:"max_seen"`
	ConsensusMembers []ConsensusMember `mapstructure:"consensus_members"`
}

type Session struct {
	Local  string `mapstructure:"local"`
	Remote string `mapstructure:"remote"`
	P2P    string `mapstructure:"p2p"`
}

type PeerBookEntry struct {
	Name            string    `mapstructure:"name"`
	Address         string    `mapstructure:"address"`
	ConnectionCount int       `mapstructure:"connection_count"`
	Sessions        []Session `mapstructure:"sessions"`
}

type Balance struct {
	Address string  `mapstructure:"address"`
	Balance float64 `mapstructure:"balance"`
}
