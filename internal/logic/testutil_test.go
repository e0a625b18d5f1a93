package logic

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/michojekunle/BitGive/internal/database"
	"github.com/michojekunle/BitGive/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 测试用地址，大小写混合以覆盖归一化路径
const (
	testAdmin    = "0x00000000000000000000000000000000000000A1"
	testVerifier = "0x00000000000000000000000000000000000000B2"
	testService  = "0x00000000000000000000000000000000000000C3"
	testOwner    = "0x00000000000000000000000000000000000000D4"
	testDonor    = "0x00000000000000000000000000000000000000E5"
	testDonor2   = "0x00000000000000000000000000000000000000F6"
)

const testCreationFee int64 = 1_000_000_000_000_000

// newTestDB 创建基于sqlite的测试数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// seedPlatform 初始化平台配置与角色：admin、service（minter）、verifier
func seedPlatform(t *testing.T, db *gorm.DB, feeBasisPoints int64) {
	t.Helper()
	registry := NewRegistryLogic(db)
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, feeBasisPoints, testCreationFee))
	require.NoError(t, registry.GrantRole(testAdmin, testVerifier, model.RoleVerifier))
}

// createCampaign 创建一个测试活动
func createCampaign(t *testing.T, db *gorm.DB, owner string, goal int64) *model.CampaignModel {
	t.Helper()
	campaigns := NewCampaignLogic(db)
	campaign, err := campaigns.CreateCampaign(owner, "Clean Water", "Water for villages", "Long story",
		goal, 30, []string{"100 wells"}, "ipfs://image")
	require.NoError(t, err)
	return campaign
}

// createActiveCampaign 创建并审核、激活一个测试活动
func createActiveCampaign(t *testing.T, db *gorm.DB, owner string, goal int64) *model.CampaignModel {
	t.Helper()
	campaign := createCampaign(t, db, owner, goal)
	campaigns := NewCampaignLogic(db)
	require.NoError(t, campaigns.VerifyCampaign(testVerifier, campaign.Id, true))
	require.NoError(t, campaigns.SetActive(testVerifier, campaign.Id, true))
	return campaign
}

// backdateCampaign 将活动创建时间回拨，使其超过结束时间
func backdateCampaign(t *testing.T, db *gorm.DB, id int64, days int) {
	t.Helper()
	err := db.Model(&model.CampaignModel{}).
		Where("id = ?", id).
		Update("created_at", time.Now().AddDate(0, 0, -days)).Error
	require.NoError(t, err)
}
