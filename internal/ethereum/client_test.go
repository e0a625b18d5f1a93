package ethereum

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/michojekunle/BitGive/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := Init(config.SettlementConfig{
		RPCURL:        "http://127.0.0.1:8545",
		ContractAddr:  "0x00000000000000000000000000000000000000CC",
		Confirmations: 12,
	})
	require.NoError(t, err)
	return client
}

// buildSettledLog 构造一条DonationSettled日志
func buildSettledLog(t *testing.T, campaignId, amount *big.Int, donor common.Address, uri string) types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	require.NoError(t, err)
	event := parsed.Events["DonationSettled"]

	data, err := event.Inputs.NonIndexed().Pack(amount, uri)
	require.NoError(t, err)

	return types.Log{
		Topics: []common.Hash{
			event.ID,
			common.BigToHash(campaignId),
			common.BytesToHash(donor.Bytes()),
		},
		Data:        data,
		BlockNumber: 100,
		TxHash:      common.HexToHash("0x01"),
		Index:       3,
	}
}

func TestParseDonationSettled(t *testing.T) {
	client := newTestClient(t)
	donor := common.HexToAddress("0x00000000000000000000000000000000000000E5")

	lg := buildSettledLog(t, big.NewInt(7), big.NewInt(10_000_000_000_000_000), donor, "ipfs://reward")
	settled, err := client.ParseDonationSettled(lg)
	require.NoError(t, err)

	assert.Equal(t, int64(7), settled.CampaignId)
	assert.Equal(t, donor.Hex(), settled.Donor)
	assert.Equal(t, int64(10_000_000_000_000_000), settled.Amount)
	assert.Equal(t, "ipfs://reward", settled.TokenURI)
	assert.Equal(t, int64(100), settled.BlockNum)
	assert.Equal(t, int64(3), settled.LogIndex)
}

func TestParseDonationSettled_UnknownEvent(t *testing.T) {
	client := newTestClient(t)
	donor := common.HexToAddress("0x00000000000000000000000000000000000000E5")

	lg := buildSettledLog(t, big.NewInt(1), big.NewInt(1000), donor, "")
	lg.Topics[0] = common.HexToHash("0xdead")

	_, err := client.ParseDonationSettled(lg)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestParseDonationSettled_AmountOutOfRange(t *testing.T) {
	client := newTestClient(t)
	donor := common.HexToAddress("0x00000000000000000000000000000000000000E5")

	// 超过int64上限的uint256金额不可截断
	amount := new(big.Int).Lsh(big.NewInt(1), 70)
	lg := buildSettledLog(t, big.NewInt(1), amount, donor, "")

	_, err := client.ParseDonationSettled(lg)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestParseDonationSettled_CampaignIdOutOfRange(t *testing.T) {
	client := newTestClient(t)
	donor := common.HexToAddress("0x00000000000000000000000000000000000000E5")

	campaignId := new(big.Int).Lsh(big.NewInt(1), 64)
	lg := buildSettledLog(t, campaignId, big.NewInt(1000), donor, "")

	_, err := client.ParseDonationSettled(lg)
	assert.ErrorIs(t, err, ErrValueOutOfRange)
}
