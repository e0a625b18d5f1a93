package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/michojekunle/BitGive/internal/config"
	"github.com/michojekunle/BitGive/internal/ethereum"
	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/logic"
	"github.com/michojekunle/BitGive/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// SettlementMonitor 结算事件监控器。
// 订阅结算合约的DonationSettled日志，将已完成转账的捐赠送入账本处理。
type SettlementMonitor struct {
	client        *ethereum.Client
	db            *gorm.DB
	donationLogic *logic.DonationLogic
	cfg           config.SettlementConfig
	pool          *ants.Pool
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex // 保护 startBlockNum 的并发访问
	startBlockNum int64
}

// NewSettlementMonitor 创建结算事件监控器
func NewSettlementMonitor(client *ethereum.Client, db *gorm.DB, serviceAddress string, cfg config.SettlementConfig) (*SettlementMonitor, error) {
	poolSize := cfg.WorkerPool
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SettlementMonitor{
		client:        client,
		db:            db,
		donationLogic: logic.NewDonationLogic(db, serviceAddress),
		cfg:           cfg,
		pool:          pool,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start 启动监控
func (m *SettlementMonitor) Start() error {
	logger.Info("Starting settlement event monitor")

	// 测试 RPC 连接
	currentBlock, err := m.client.GetLatestBlock()
	if err != nil {
		return fmt.Errorf("failed to connect to settlement chain: %w", err)
	}
	logger.Info("Connected to settlement chain, current block: %d", currentBlock)

	// 确定起始区块号
	startBlock, err := m.resolveStartBlock()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.startBlockNum = startBlock
	m.mu.Unlock()

	logger.Info("Starting monitor from block %d", startBlock)

	// 启动监控循环
	go m.loop()

	return nil
}

// Stop 停止监控
func (m *SettlementMonitor) Stop() {
	logger.Info("Stopping settlement event monitor")
	m.cancel()
	m.pool.Release()
}

// resolveStartBlock 确定起始区块号：
// 取配置的部署区块与数据库中已处理最大区块的较大者。
func (m *SettlementMonitor) resolveStartBlock() (int64, error) {
	deployBlock := int64(m.client.StartBlock())

	var maxProcessedBlock int64
	err := m.db.Model(&model.SettlementEventModel{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&maxProcessedBlock).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max processed block: %w", err)
	}

	startBlock := deployBlock
	if maxProcessedBlock >= deployBlock {
		startBlock = maxProcessedBlock + 1
	}

	logger.Info("Resolved start block: %d (deploy: %d, db: %d)",
		startBlock, deployBlock, maxProcessedBlock)
	return startBlock, nil
}

// loop 监控循环
func (m *SettlementMonitor) loop() {
	interval := m.cfg.PollInterval
	if interval <= 0 {
		interval = 60
	}
	ticker := time.NewTicker(time.Duration(interval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Settlement monitor stopped")
			return
		case <-ticker.C:
			// 只处理已确认的区块
			confirmedBlock, err := m.client.GetConfirmedBlock()
			if err != nil {
				logger.Error("Failed to get confirmed block number: %v", err)
				continue
			}

			m.mu.RLock()
			fromBlock := m.startBlockNum
			m.mu.RUnlock()

			if int64(confirmedBlock) < fromBlock {
				continue
			}

			if err := m.processBlocksInBatches(fromBlock, int64(confirmedBlock)); err != nil {
				logger.Error("Error processing blocks: %v", err)
			}
		}
	}
}

// processBlocksInBatches 分批处理区块
func (m *SettlementMonitor) processBlocksInBatches(fromBlock, toBlock int64) error {
	batchSize := m.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	for currentFrom := fromBlock; currentFrom <= toBlock; currentFrom += batchSize {
		currentTo := currentFrom + batchSize - 1
		if currentTo > toBlock {
			currentTo = toBlock
		}

		logger.Debug("Processing batch blocks %d to %d", currentFrom, currentTo)
		if err := m.processBatch(currentFrom, currentTo); err != nil {
			return fmt.Errorf("error processing blocks %d-%d: %w", currentFrom, currentTo, err)
		}

		// 光标在整批处理完成后才推进
		m.mu.Lock()
		m.startBlockNum = currentTo + 1
		m.mu.Unlock()
	}

	return nil
}

// processBatch 处理单批区块内的结算日志。
// 任一日志处理失败则整批失败，游标不推进，下一轮重试。
func (m *SettlementMonitor) processBatch(fromBlock, toBlock int64) error {
	logs, err := m.client.GetLogs(uint64(fromBlock), uint64(toBlock))
	if err != nil {
		return fmt.Errorf("error getting logs: %w", err)
	}
	if len(logs) == 0 {
		return nil
	}

	logger.Debug("Found %d logs for blocks %d-%d", len(logs), fromBlock, toBlock)

	// 协程池并发处理日志
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		batchErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if batchErr == nil {
			batchErr = err
		}
		errMu.Unlock()
	}
	for _, lg := range logs {
		lg := lg
		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			if err := m.handleLog(lg); err != nil {
				logger.Error("Failed to process settlement log %s/%d: %v", lg.TxHash.Hex(), lg.Index, err)
				fail(err)
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit task to pool: %w", err))
		}
	}
	wg.Wait()

	return batchErr
}

// handleLog 处理单条结算日志。
// 捐赠入账与事件记录在同一事务内提交，事件不会被重复入账；
// 返回错误表示瞬时失败，调用方保留游标重试。
func (m *SettlementMonitor) handleLog(lg types.Log) error {
	settled, err := m.client.ParseDonationSettled(lg)
	if err != nil {
		if errors.Is(err, ethereum.ErrUnknownEvent) {
			logger.Debug("Skipping non-settlement log %s/%d", lg.TxHash.Hex(), lg.Index)
			return nil
		}
		// 数值越界等解析失败是终态，记录事件后跳过，不阻塞游标
		logger.Error("Unprocessable settlement log %s/%d: %v", lg.TxHash.Hex(), lg.Index, err)
		return m.recordUnprocessable(lg, err)
	}

	// 同一事件只处理一次
	processed, err := m.alreadyProcessed(settled.TxHash, settled.LogIndex)
	if err != nil {
		return fmt.Errorf("error checking settlement event %s/%d: %w", settled.TxHash, settled.LogIndex, err)
	}
	if processed {
		logger.Debug("Settlement event %s/%d already processed", settled.TxHash, settled.LogIndex)
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		donation, err := m.donationLogic.ProcessDonationTx(
			tx, settled.CampaignId, settled.Donor, settled.Amount, settled.TokenURI)
		if err != nil {
			if !isTerminalRejection(err) {
				return err
			}
			// 前置检查失败是终态拒绝，同事务记录事件避免重试，资金处置由结算层负责
			logger.Error("Settled donation rejected (campaign %d, tx %s): %v",
				settled.CampaignId, settled.TxHash, err)
			donation = nil
		}
		return m.recordEventTx(tx, settled, donation)
	})
}

// alreadyProcessed 检查事件是否已处理
func (m *SettlementMonitor) alreadyProcessed(txHash string, logIndex int64) (bool, error) {
	var count int64
	err := m.db.Model(&model.SettlementEventModel{}).
		Where("tx_hash = ? AND log_index = ?", txHash, logIndex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// recordEventTx 在事务内记录已处理的结算事件
func (m *SettlementMonitor) recordEventTx(tx *gorm.DB, settled *ethereum.SettledDonation, donation *model.DonationModel) error {
	payload := map[string]interface{}{
		"campaign_id": settled.CampaignId,
		"donor":       settled.Donor,
		"amount":      settled.Amount,
	}
	if donation != nil {
		payload["donation_id"] = donation.Id
		payload["tier"] = donation.Tier
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &model.SettlementEventModel{
		ContractAddress: m.client.ContractAddr.Hex(),
		BlockNum:        settled.BlockNum,
		TxHash:          settled.TxHash,
		LogIndex:        settled.LogIndex,
		EventName:       "DonationSettled",
		Data:            string(data),
	}
	return tx.Create(event).Error
}

// recordUnprocessable 记录无法解析的结算日志，防止游标重试时反复处理
func (m *SettlementMonitor) recordUnprocessable(lg types.Log, cause error) error {
	data, err := json.Marshal(map[string]interface{}{"error": cause.Error()})
	if err != nil {
		return err
	}

	event := &model.SettlementEventModel{
		ContractAddress: m.client.ContractAddr.Hex(),
		BlockNum:        int64(lg.BlockNumber),
		TxHash:          lg.TxHash.Hex(),
		LogIndex:        int64(lg.Index),
		EventName:       "DonationSettled",
		Data:            string(data),
	}
	return m.db.Where("tx_hash = ? AND log_index = ?", event.TxHash, event.LogIndex).
		FirstOrCreate(event).Error
}

// isTerminalRejection 判断拒绝是否为终态（重试也不会成功入账的业务拒绝）
func isTerminalRejection(err error) bool {
	return errors.Is(err, logic.ErrCampaignNotFound) ||
		errors.Is(err, logic.ErrCampaignNotVerified) ||
		errors.Is(err, logic.ErrCampaignNotActive) ||
		errors.Is(err, logic.ErrCampaignEnded) ||
		errors.Is(err, logic.ErrInvalidAmount) ||
		errors.Is(err, logic.ErrInvalidAddress)
}
