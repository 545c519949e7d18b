package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every exported family, registered against one injected
// registry so each test run can own a fresh one.
type Metrics struct {
	scrapeTime    prometheus.Summary
	chainStats    *prometheus.GaugeVec
	height        *prometheus.GaugeVec
	inConsensus   *prometheus.GaugeVec
	blockAge      *prometheus.GaugeVec
	heartbeat     *prometheus.GaugeVec
	hbbftPerf     *prometheus.GaugeVec
	connections   *prometheus.GaugeVec
	sessions      *prometheus.GaugeVec
	ledgerPenalty *prometheus.GaugeVec
	version       *prometheus.GaugeVec
	balance       *prometheus.GaugeVec
	systemUsage   *prometheus.GaugeVec
}

func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		scrapeTime: prometheus.NewSummary(prometheus.SummaryOpts{
			Name: "validator_scrape_time",
			Help: "Time spent collecting miner data",
		}),
		chainStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "chain_stats",
			Help: "Stats about the global chain",
		}, []string{"resource_type"}),
		height: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_height",
			Help: "Height of the validator's blockchain",
		}, []string{"resource_type", "validator_name"}),
		inConsensus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_inconsensus",
			Help: "Is validator currently in consensus group",
		}, []string{"validator_name"}),
		blockAge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_block_age",
			Help: "Age of the current block",
		}, []string{"validator_name"}),
		heartbeat: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_last_heartbeat",
			Help: "Blocks since last validator heartbeat",
		}, []string{"validator_name", "validator_address"}),
		hbbftPerf: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_hbbft_perf",
			Help: "HBBFT performance metrics from perf, only applies when in CG",
		}, []string{"resource_type", "subtype", "validator_name"}),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_connections",
			Help: "Number of libp2p connections",
		}, []string{"resource_type", "validator_name"}),
		sessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_sessions",
			Help: "Number of libp2p sessions",
		}, []string{"resource_type", "validator_name"}),
		ledgerPenalty: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_ledger",
			Help: "Validator performance metrics",
		}, []string{"resource_type", "subtype", "validator_name", "validator_address"}),
		version: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "validator_version",
			Help: "Version number of the miner container",
		}, []string{"validator_name", "version"}),
		balance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_balance",
			Help: "Balance of the validator owner account",
		}, []string{"validator_name"}),
		systemUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "system_usage",
			Help: "Hold current system resource usage",
		}, []string{"resource_type", "hostname"}),
	}

	registry.MustRegister(m.scrapeTime)
	registry.MustRegister(m.chainStats)
	registry.MustRegister(m.height)
	registry.MustRegister(m.inConsensus)
	registry.MustRegister(m.blockAge)
	registry.MustRegister(m.heartbeat)
	registry.MustRegister(m.hbbftPerf)
	registry.MustRegister(m.connections)
	registry.MustRegister(m.sessions)
	registry.MustRegister(m.ledgerPenalty)
	registry.MustRegister(m.version)
	registry.MustRegister(m.balance)
	registry.MustRegister(m.systemUsage)

	return m
}
