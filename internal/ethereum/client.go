package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/michojekunle/BitGive/internal/config"
)

// Client 结算合约客户端。
// 平台假定捐赠金额在事件产生前已经完成不可逆转账，这里只做只读订阅。
type Client struct {
	client        *ethclient.Client
	ContractAddr  common.Address
	startBlock    uint64
	confirmations int
	contractABI   abi.ABI
}

// 结算合约ABI定义（仅事件部分）
const contractABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"},
			{"indexed": true, "name": "donor", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "tokenURI", "type": "string"}
		],
		"name": "DonationSettled",
		"type": "event"
	}
]`

// 解析错误分类，订阅方据此区分跳过与终态失败
var (
	ErrUnknownEvent    = errors.New("unknown event signature")
	ErrValueOutOfRange = errors.New("event value exceeds int64 range")
)

// SettledDonation 已结算的捐赠事件
type SettledDonation struct {
	CampaignId int64
	Donor      string
	Amount     int64
	TokenURI   string
	TxHash     string
	BlockNum   int64
	LogIndex   int64
}

func Init(cfg config.SettlementConfig) (*Client, error) {
	// 连接结算链客户端
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to settlement client: %w", err)
	}

	// 解析合约地址
	contractAddr := common.HexToAddress(cfg.ContractAddr)

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Client{
		client:        client,
		ContractAddr:  contractAddr,
		startBlock:    cfg.StartBlock,
		confirmations: cfg.Confirmations,
		contractABI:   parsedABI,
	}, nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock() (uint64, error) {
	header, err := c.client.HeaderByNumber(context.Background(), nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// GetConfirmedBlock 获取已确认的最高区块号
func (c *Client) GetConfirmedBlock() (uint64, error) {
	latest, err := c.GetLatestBlock()
	if err != nil {
		return 0, err
	}
	if latest < uint64(c.confirmations) {
		return 0, nil
	}
	return latest - uint64(c.confirmations), nil
}

// GetLogs 获取指定区块范围内的结算合约日志
func (c *Client) GetLogs(fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.ContractAddr},
	}

	return c.client.FilterLogs(context.Background(), query)
}

// ParseDonationSettled 解析结算事件日志
func (c *Client) ParseDonationSettled(log types.Log) (*SettledDonation, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}

	event := c.contractABI.Events["DonationSettled"]
	if log.Topics[0] != event.ID {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, log.Topics[0].Hex())
	}
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("invalid DonationSettled event: insufficient topics")
	}

	// 解析非索引参数（amount, tokenURI）
	var data struct {
		Amount   *big.Int
		TokenURI string
	}
	if err := c.contractABI.UnpackIntoInterface(&data, "DonationSettled", log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack DonationSettled data: %w", err)
	}

	// 超出int64范围的uint256不能截断，截断后的负值会被账本误判拒绝
	campaignId := new(big.Int).SetBytes(log.Topics[1].Bytes())
	if !campaignId.IsInt64() {
		return nil, fmt.Errorf("%w: campaignId %s", ErrValueOutOfRange, campaignId)
	}
	if !data.Amount.IsInt64() {
		return nil, fmt.Errorf("%w: amount %s", ErrValueOutOfRange, data.Amount)
	}

	return &SettledDonation{
		CampaignId: campaignId.Int64(),
		Donor:      common.BytesToAddress(log.Topics[2].Bytes()).Hex(),
		Amount:     data.Amount.Int64(),
		TokenURI:   data.TokenURI,
		TxHash:     log.TxHash.Hex(),
		BlockNum:   int64(log.BlockNumber),
		LogIndex:   int64(log.Index),
	}, nil
}

// StartBlock 合约部署区块号
func (c *Client) StartBlock() uint64 {
	return c.startBlock
}
