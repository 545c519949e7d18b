package miner

// JSONRPC client against the validator node
import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/superisaac/jsoff"
	"github.com/superisaac/jsoff/net"
)

// Client is the set of node resources the exporter polls. Each call maps
// to one JSON-RPC method and fails independently of the others.
type Client interface {
	Address(ctx context.Context) (string, error)
	Name(ctx context.Context) (string, error)
	HeightInfo(ctx context.Context) (*HeightInfo, error)
	InConsensus(ctx context.Context) (bool, error)
	LedgerValidators(ctx context.Context) ([]LedgerEntry, error)
	LedgerValidator(ctx context.Context, address string) (*LedgerEntry, error)
	LedgerBalance(ctx context.Context, address string) (*Balance, error)
	Version(ctx context.Context) (string, error)
	BlockAge(ctx context.Context) (int64, error)
	HbbftPerf(ctx context.Context) (*HbbftPerf, error)
	PeerBookSelf(ctx context.Context) ([]PeerBookEntry, error)
}

// RPCClient implements Client over the node's JSON-RPC http endpoint.
type RPCClient struct {
	serverUrl string
	timeout   int
	rpcClient jsoffnet.Client
}

func NewRPCClient(serverUrl string) *RPCClient {
	return &RPCClient{serverUrl: serverUrl}
}

func (self *RPCClient) ensureRPCClient() {
	if self.rpcClient == nil {
		opts := jsoffnet.ClientOptions{Timeout: self.timeout}
		c, err := jsoffnet.NewClient(self.serverUrl, opts)
		if err != nil {
			panic(err)
		}
		self.rpcClient = c
	}
}

func (self *RPCClient) callRPC(rootCtx context.Context, method string, params interface{}) (interface{}, error) {
	self.ensureRPCClient()

	reqId := strings.ReplaceAll(uuid.New().String(), "-", "")
	reqmsg := jsoff.NewRequestMessage(reqId, method, params)

	start := time.Now()
	resmsg, err := self.rpcClient.Call(rootCtx, reqmsg)
	delta := time.Since(start)

	fields := log.Fields{
		"method":      method,
		"timeSpentMS": delta.Milliseconds(),
	}
	if err != nil {
		fields["err"] = err.Error()
	}
	log.WithFields(fields).Debug("call jsonrpc")

	if err != nil {
		return nil, errors.Wrap(err, method)
	}
	if !resmsg.IsResult() {
		return nil, resmsg.MustError()
	}
	return resmsg.MustResult(), nil
}

func (self *RPCClient) callDecode(rootCtx context.Context, method string, params interface{}, output interface{}) error {
	result, err := self.callRPC(rootCtx, method, params)
	if err != nil {
		return err
	}
	if err := mapstructure.Decode(result, output); err != nil {
		return errors.Wrapf(err, "decode %s result", method)
	}
	return nil
}

func (self *RPCClient) Address(ctx context.Context) (string, error) {
	var res struct {
		PeerAddr string `mapstructure:"peer_addr"`
	}
	if err := self.callDecode(ctx, "peer_addr", nil, &res); err != nil {
		return "", err
	}
	if res.PeerAddr == "" {
		return "", errors.New("empty peer_addr result")
	}
	return res.PeerAddr, nil
}

func (self *RPCClient) Name(ctx context.Context) (string, error) {
	var res struct {
		Name string `mapstructure:"name"`
	}
	if err := self.callDecode(ctx, "info_name", nil, &res); err != nil {
		return "", err
	}
	if res.Name == "" {
		return "", errors.New("empty info_name result")
	}
	return res.Name, nil
}

func (self *RPCClient) HeightInfo(ctx context.Context) (*HeightInfo, error) {
	var hi HeightInfo
	if err := self.callDecode(ctx, "info_height", nil, &hi); err != nil {
		return nil, err
	}
	return &hi, nil
}

func (self *RPCClient) InConsensus(ctx context.Context) (bool, error) {
	var res struct {
		InConsensus bool `mapstructure:"in_consensus"`
	}
	if err := self.callDecode(ctx, "in_consensus", nil, &res); err != nil {
		return false, err
	}
	return res.InConsensus, nil
}

func (self *RPCClient) LedgerValidators(ctx context.Context) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := self.callDecode(ctx, "ledger_validators", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (self *RPCClient) LedgerValidator(ctx context.Context, address string) (*LedgerEntry, error) {
	var entry LedgerEntry
	params := map[string]interface{}{"address": address}
	if err := self.callDecode(ctx, "ledger_validators", params, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (self *RPCClient) LedgerBalance(ctx context.Context, address string) (*Balance, error) {
	var balance Balance
	params := map[string]interface{}{"address": address}
	if err := self.callDecode(ctx, "ledger_balance", params, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (self *RPCClient) Version(ctx context.Context) (string, error) {
	var res struct {
		Version string `mapstructure:"version"`
	}
	if err := self.callDecode(ctx, "info_version", nil, &res); err != nil {
		return "", err
	}
	return res.Version, nil
}

func (self *RPCClient) BlockAge(ctx context.Context) (int64, error) {
	var res struct {
		BlockAge int64 `mapstructure:"block_age"`
	}
	if err := self.callDecode(ctx, "info_block_age", nil, &res); err != nil {
		return 0, err
	}
	return res.BlockAge, nil
}

func (self *RPCClient) HbbftPerf(ctx context.Context) (*HbbftPerf, error) {
	var perf HbbftPerf
	if err := self.callDecode(ctx, "hbbft_perf", nil, &perf); err != nil {
		return nil, err
	}
	return &perf, nil
}

func (self *RPCClient) PeerBookSelf(ctx context.Context) ([]PeerBookEntry, error) {
	var entries []PeerBookEntry
	params := map[string]interface{}{"addr": "self"}
	if err := self.callDecode(ctx, "peer_book", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
