package logic

import (
	"strings"
	"testing"

	"github.com/michojekunle/BitGive/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"0.01 ether at 250bps", 10_000_000_000_000_000, 250, 25_000_000_000_000},
		{"1 ether at 250bps", 1_000_000_000_000_000_000, 250, 25_000_000_000_000_000},
		{"rounds down", 100, 250, 2},
		{"zero fee rate", 10_000_000_000_000_000, 0, 0},
		{"zero amount", 0, 250, 0},
		{"max fee rate", 10_000, 1000, 1_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlatformFee(tt.amount, tt.bps))
		})
	}
}

func TestPlatformFee_LargeAmountNoOverflow(t *testing.T) {
	// 1e18 * 250 超出int64范围，计算必须不溢出
	amount := int64(1_000_000_000_000_000_000)
	assert.Equal(t, int64(25_000_000_000_000_000), PlatformFee(amount, 250))
}

func TestEnsureInitialized(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryLogic(db)
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, 250, testCreationFee))

	held, err := registry.HasRole(testAdmin, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = registry.HasRole(testService, model.RoleMinter)
	require.NoError(t, err)
	assert.True(t, held)

	cfg, err := registry.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(250), cfg.FeeBasisPoints)
	assert.Equal(t, testCreationFee, cfg.CampaignCreationFee)
	assert.False(t, cfg.Paused)
}

func TestEnsureInitialized_Idempotent(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryLogic(db)
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, 250, testCreationFee))
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, 500, 0))

	// 二次初始化不覆盖已有配置，也不产生重复角色
	cfg, err := registry.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(250), cfg.FeeBasisPoints)

	var roleCount int64
	require.NoError(t, db.Model(&model.RoleModel{}).Count(&roleCount).Error)
	assert.Equal(t, int64(2), roleCount)
}

func TestEnsureInitialized_SeedsTierCounters(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryLogic(db)
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, 250, testCreationFee))
	require.NoError(t, registry.EnsureInitialized(testAdmin, testService, 250, testCreationFee))

	// 三个档位各预置一行计数器，二次初始化不重复
	var counters []model.TierCounterModel
	require.NoError(t, db.Order("tier ASC").Find(&counters).Error)
	require.Len(t, counters, 3)
	for _, counter := range counters {
		assert.Equal(t, int64(0), counter.Count)
	}
}

func TestEnsureInitialized_InvalidInput(t *testing.T) {
	db := newTestDB(t)
	registry := NewRegistryLogic(db)

	assert.ErrorIs(t, registry.EnsureInitialized("", testService, 250, testCreationFee), ErrInvalidAddress)
	assert.ErrorIs(t, registry.EnsureInitialized(testAdmin, testService, 1001, testCreationFee), ErrFeeOutOfRange)
	assert.ErrorIs(t, registry.EnsureInitialized(testAdmin, testService, 250, -1), ErrInvalidAmount)
}

func TestGrantRole(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	require.NoError(t, registry.GrantRole(testAdmin, testDonor, model.RoleVerifier))
	held, err := registry.HasRole(testDonor, model.RoleVerifier)
	require.NoError(t, err)
	assert.True(t, held)

	// 重复授予不报错
	require.NoError(t, registry.GrantRole(testAdmin, testDonor, model.RoleVerifier))

	assert.ErrorIs(t, registry.GrantRole(testDonor, testDonor2, model.RoleAdmin), ErrUnauthorized)
	assert.ErrorIs(t, registry.GrantRole(testAdmin, testDonor, model.Role("owner")), ErrInvalidRole)
	assert.ErrorIs(t, registry.GrantRole(testAdmin, "", model.RoleVerifier), ErrInvalidAddress)
}

func TestRevokeRole(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	require.NoError(t, registry.RevokeRole(testAdmin, testVerifier, model.RoleVerifier))
	held, err := registry.HasRole(testVerifier, model.RoleVerifier)
	require.NoError(t, err)
	assert.False(t, held)

	assert.ErrorIs(t, registry.RevokeRole(testVerifier, testAdmin, model.RoleAdmin), ErrUnauthorized)
}

func TestRevokeRole_LastAdmin(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	// 平台唯一管理员不可自我移除
	assert.ErrorIs(t, registry.RevokeRole(testAdmin, testAdmin, model.RoleAdmin), ErrLastAdmin)

	// 存在第二个管理员后才允许移除
	require.NoError(t, registry.GrantRole(testAdmin, testDonor, model.RoleAdmin))
	require.NoError(t, registry.RevokeRole(testAdmin, testAdmin, model.RoleAdmin))

	held, err := registry.HasRole(testAdmin, model.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestHasRole_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	held, err := registry.HasRole(strings.ToUpper(testAdmin), model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, held)

	// 大小写不同的调用者同样通过权限校验
	require.NoError(t, registry.GrantRole(strings.ToUpper(testAdmin), testDonor, model.RoleMinter))
}

func TestSetPaused(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	paused, err := registry.IsPaused()
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, registry.SetPaused(testAdmin, true))
	paused, err = registry.IsPaused()
	require.NoError(t, err)
	assert.True(t, paused)

	require.NoError(t, registry.SetPaused(testAdmin, false))
	paused, err = registry.IsPaused()
	require.NoError(t, err)
	assert.False(t, paused)

	assert.ErrorIs(t, registry.SetPaused(testDonor, true), ErrUnauthorized)
}

func TestUpdateFeeBasisPoints(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	require.NoError(t, registry.UpdateFeeBasisPoints(testAdmin, 500))
	cfg, err := registry.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(500), cfg.FeeBasisPoints)

	assert.ErrorIs(t, registry.UpdateFeeBasisPoints(testAdmin, 1001), ErrFeeOutOfRange)
	assert.ErrorIs(t, registry.UpdateFeeBasisPoints(testAdmin, -1), ErrFeeOutOfRange)
	assert.ErrorIs(t, registry.UpdateFeeBasisPoints(testDonor, 100), ErrUnauthorized)
}

func TestUpdateCampaignCreationFee(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	require.NoError(t, registry.UpdateCampaignCreationFee(testAdmin, 2_000_000_000_000_000))
	cfg, err := registry.GetPlatformConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000_000_000_000), cfg.CampaignCreationFee)

	assert.ErrorIs(t, registry.UpdateCampaignCreationFee(testAdmin, -1), ErrInvalidAmount)
	assert.ErrorIs(t, registry.UpdateCampaignCreationFee(testDonor, 0), ErrUnauthorized)
}

func TestCalculatePlatformFee(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)

	fee, err := registry.CalculatePlatformFee(10_000_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(25_000_000_000_000), fee)

	require.NoError(t, registry.UpdateFeeBasisPoints(testAdmin, 0))
	fee, err = registry.CalculatePlatformFee(10_000_000_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fee)
}
