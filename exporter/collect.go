package exporter

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/PaulVMo/miner-exporter/miner"
)

// Collector runs one collection cycle: resolve the validator's identity,
// fetch each node resource behind its own failure boundary, then map the
// values that resolved onto the metric families.
type Collector struct {
	client  miner.Client
	metrics *Metrics
	system  *systemSampler

	mu  sync.RWMutex
	cfg *Config
}

func NewCollector(client miner.Client, cfg *Config, metrics *Metrics) *Collector {
	return &Collector{
		client:  client,
		cfg:     cfg,
		metrics: metrics,
		system:  newSystemSampler(),
	}
}

func (self *Collector) Config() *Config {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.cfg
}

// SetConfig swaps the config used by subsequent cycles. The jsonrpc
// address and exporter port only take effect after a restart.
func (self *Collector) SetConfig(cfg *Config) {
	self.mu.Lock()
	old := self.cfg
	self.cfg = cfg
	self.mu.Unlock()

	if old.JsonrpcAddress != cfg.JsonrpcAddress {
		log.Warnf("jsonrpc address change to %s requires a restart", cfg.JsonrpcAddress)
	}
	if old.Port != cfg.Port {
		log.Warnf("port change to %d requires a restart", cfg.Port)
	}
}

func (self *Collector) Collect(rootCtx context.Context) {
	timer := prometheus.NewTimer(self.metrics.scrapeTime)
	defer timer.ObserveDuration()

	cfg := self.Config()

	// Host usage is a pure local read and publishes on every cycle,
	// whether or not the node answers.
	if cfg.CollectSystemUsage {
		self.system.sample(self.metrics)
	}

	// So many things depend on knowing which validator is "self" that
	// the cycle aborts when either identity lookup fails. Previously
	// published values stay visible until the next successful cycle.
	addr, err := self.client.Address(rootCtx)
	if err != nil {
		log.Errorf("can't get validator's address: %s", err)
		return
	}
	name, err := self.client.Name(rootCtx)
	if err != nil {
		log.Errorf("can't get validator's name: %s", err)
		return
	}

	//
	// Safely try to obtain as many items as possible.
	//
	var heightInfo *miner.HeightInfo
	if hi, err := self.client.HeightInfo(rootCtx); err != nil {
		log.Errorf("chain height fetch failure: %s", err)
	} else {
		heightInfo = hi
	}

	var inConsensus *bool
	if in, err := self.client.InConsensus(rootCtx); err != nil {
		log.Errorf("in consensus fetch failure: %s", err)
	} else {
		inConsensus = &in
	}

	penaltyLedger := self.fetchPenaltyLedger(rootCtx, cfg, addr)

	// The owner account is looked up in the ledger, so both derivations
	// quietly come out empty when the ledger fetch failed.
	var owner string
	if entry, ok := penaltyLedger[addr]; ok {
		owner = entry.OwnerAddress
	}

	var balance *float64
	if owner != "" {
		if res, err := self.client.LedgerBalance(rootCtx, owner); err != nil {
			log.Errorf("owner balance fetch failure: %s", err)
		} else {
			scaled := res.Balance / 1.0e8
			balance = &scaled
		}
	}

	var version *string
	if v, err := self.client.Version(rootCtx); err != nil {
		log.Errorf("version fetch error: %s", err)
	} else {
		version = &v
	}

	var blockAge *int64
	if age, err := self.client.BlockAge(rootCtx); err != nil {
		log.Errorf("block age fetch failure: %s", err)
	} else {
		blockAge = &age
	}

	var hbbftPerf *miner.HbbftPerf
	if perf, err := self.client.HbbftPerf(rootCtx); err != nil {
		log.Errorf("hbbft perf fetch failure: %s", err)
	} else {
		hbbftPerf = perf
	}

	var peerBook []miner.PeerBookEntry
	if entries, err := self.client.PeerBookSelf(rootCtx); err != nil {
		log.Errorf("peer book self fetch failure: %s", err)
	} else {
		peerBook = entries
	}

	//
	// Parse results, update gauges.
	//
	if heightInfo != nil {
		self.metrics.height.WithLabelValues("Height", name).Set(float64(heightInfo.ValidatorHeight()))
		self.metrics.chainStats.WithLabelValues("Height").Set(float64(heightInfo.Height))
	}

	if inConsensus != nil {
		v := 0.0
		if *inConsensus {
			v = 1.0
		}
		self.metrics.inConsensus.WithLabelValues(name).Set(v)
	}

	if balance != nil {
		self.metrics.balance.WithLabelValues(name).Set(*balance)
	}

	if blockAge != nil {
		self.metrics.blockAge.WithLabelValues(name).Set(float64(*blockAge))
	}

	if version != nil {
		// reset first so an upgraded version label does not linger
		self.metrics.version.Reset()
		self.metrics.version.WithLabelValues(name, *version).Set(1)
	}

	if penaltyLedger != nil {
		self.publishPenaltyLedger(penaltyLedger)
	}

	if hbbftPerf != nil {
		self.publishHbbftPerf(cfg, addr, hbbftPerf)
	}

	if len(peerBook) > 0 {
		entry := peerBook[0]
		self.metrics.connections.WithLabelValues("connections", name).Set(float64(entry.ConnectionCount))
		self.metrics.sessions.WithLabelValues("sessions", name).Set(float64(len(entry.Sessions)))
	}
}

// fetchPenaltyLedger returns the penalty ledger keyed by address, either
// for every staked validator or for self only. A nil map means the fetch
// failed and nothing must be republished this cycle.
func (self *Collector) fetchPenaltyLedger(rootCtx context.Context, cfg *Config, addr string) map[string]miner.LedgerEntry {
	if cfg.AllPenalties {
		entries, err := self.client.LedgerValidators(rootCtx)
		if err != nil {
			log.Errorf("validator fetch failure: %s", err)
			return nil
		}
		ledger := make(map[string]miner.LedgerEntry)
		for _, entry := range entries {
			if entry.Status == "staked" {
				ledger[entry.Address] = entry
			}
		}
		return ledger
	}

	entry, err := self.client.LedgerValidator(rootCtx, addr)
	if err != nil {
		log.Errorf("validator fetch failure: %s", err)
		return nil
	}
	return map[string]miner.LedgerEntry{addr: *entry}
}

func (self *Collector) publishPenaltyLedger(ledger map[string]miner.LedgerEntry) {
	// clear the family so unstaked validators drop off
	self.metrics.ledgerPenalty.Reset()

	for _, entry := range ledger {
		self.metrics.ledgerPenalty.WithLabelValues("ledger_penalties", "tenure", entry.Name, entry.Address).Set(entry.TenurePenalty)
		self.metrics.ledgerPenalty.WithLabelValues("ledger_penalties", "dkg", entry.Name, entry.Address).Set(entry.DkgPenalty)
		self.metrics.ledgerPenalty.WithLabelValues("ledger_penalties", "performance", entry.Name, entry.Address).Set(entry.PerformancePenalty)
		self.metrics.ledgerPenalty.WithLabelValues("ledger_penalties", "total", entry.Name, entry.Address).Set(entry.TotalPenalty)
		if entry.TenurePenalty > 0 {
			ratio := (entry.PerformancePenalty + entry.DkgPenalty) / entry.TenurePenalty
			self.metrics.ledgerPenalty.WithLabelValues("ledger_penalties", "perf_tenure_ratio", entry.Name, entry.Address).Set(ratio)
		}
		self.metrics.heartbeat.WithLabelValues(entry.Name, entry.Address).Set(entry.LastHeartbeat)
	}
}

func (self *Collector) publishHbbftPerf(cfg *Config, addr string, perf *miner.HbbftPerf) {
	// clear the family so members leaving the consensus group drop off
	self.metrics.hbbftPerf.Reset()

	// values common to all members of the CG
	bbaTotal := float64(perf.BlocksSinceEpoch)
	seenTotal := float64(perf.MaxSeen)

	for _, member := range perf.ConsensusMembers {
		if member.Address != addr && !cfg.AllHbbft {
			continue
		}
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "Penalty", member.Name).Set(member.Penalty)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "BBA_Total", member.Name).Set(bbaTotal)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "BBA_Votes", member.Name).Set(member.BBACompletions)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "Seen_Total", member.Name).Set(seenTotal)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "Seen_Votes", member.Name).Set(member.SeenVotes)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "BBA_Last", member.Name).Set(member.LastBBA)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "Seen_Last", member.Name).Set(member.LastSeen)
		self.metrics.hbbftPerf.WithLabelValues("hbbft_perf", "Tenure", member.Name).Set(member.Tenure)
	}
}
