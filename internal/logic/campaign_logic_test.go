package logic

import (
	"strings"
	"testing"
	"time"

	"github.com/michojekunle/BitGive/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGoal int64 = 1_000_000_000_000_000_000 // 1 ether

func TestCreateCampaign(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)

	campaign, err := campaigns.CreateCampaign(testOwner, "Clean Water", "desc", "story",
		testGoal, 30, []string{"100 wells", "5 villages"}, "ipfs://image")
	require.NoError(t, err)

	assert.Equal(t, "Clean Water", campaign.Name)
	assert.Equal(t, testGoal, campaign.Goal)
	assert.Equal(t, 30, campaign.DurationDays)
	assert.Equal(t, strings.ToLower(testOwner), campaign.Owner)
	assert.Equal(t, []string{"100 wells", "5 villages"}, campaign.GetImpacts())

	// 新活动为未审核、未激活、未推荐状态
	assert.False(t, campaign.Verified)
	assert.False(t, campaign.Active)
	assert.False(t, campaign.Featured)
	assert.Equal(t, int64(0), campaign.RaisedAmount)
	assert.Equal(t, int64(0), campaign.WithdrawnAmount)
}

func TestCreateCampaign_Validation(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)

	_, err := campaigns.CreateCampaign("", "Name", "", "", testGoal, 30, nil, "")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = campaigns.CreateCampaign(testOwner, "", "", "", testGoal, 30, nil, "")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = campaigns.CreateCampaign(testOwner, "Name", "", "", 0, 30, nil, "")
	assert.ErrorIs(t, err, ErrInvalidGoal)

	_, err = campaigns.CreateCampaign(testOwner, "Name", "", "", testGoal, model.MinDurationDays-1, nil, "")
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = campaigns.CreateCampaign(testOwner, "Name", "", "", testGoal, model.MaxDurationDays+1, nil, "")
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestCreateCampaign_Paused(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	registry := NewRegistryLogic(db)
	campaigns := NewCampaignLogic(db)

	require.NoError(t, registry.SetPaused(testAdmin, true))

	_, err := campaigns.CreateCampaign(testOwner, "Name", "", "", testGoal, 30, nil, "")
	assert.ErrorIs(t, err, ErrPlatformPaused)

	// 失败的调用不留下任何记录
	var count int64
	require.NoError(t, db.Model(&model.CampaignModel{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestVerifierFlags(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	require.NoError(t, campaigns.VerifyCampaign(testVerifier, campaign.Id, true))
	require.NoError(t, campaigns.SetActive(testVerifier, campaign.Id, true))
	require.NoError(t, campaigns.SetFeaturedCampaign(testVerifier, campaign.Id, true))

	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.True(t, info.Verified)
	assert.True(t, info.Active)
	assert.True(t, info.Featured)

	// 状态位可以再关闭
	require.NoError(t, campaigns.SetFeaturedCampaign(testVerifier, campaign.Id, false))
	info, err = campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.False(t, info.Featured)
}

func TestVerifierFlags_Unauthorized(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	// 创建者与管理员都不持有verifier角色
	assert.ErrorIs(t, campaigns.VerifyCampaign(testOwner, campaign.Id, true), ErrNotVerifier)
	assert.ErrorIs(t, campaigns.SetActive(testAdmin, campaign.Id, true), ErrNotVerifier)

	assert.ErrorIs(t, campaigns.VerifyCampaign(testVerifier, 9999, true), ErrCampaignNotFound)
}

func TestOwnerUpdates(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	// 所有权比较不区分大小写
	caller := strings.ToUpper(testOwner)
	require.NoError(t, campaigns.UpdateDescription(caller, campaign.Id, "new desc", "new story"))
	require.NoError(t, campaigns.UpdateImpacts(caller, campaign.Id, []string{"200 wells"}))
	require.NoError(t, campaigns.UpdateImageURI(caller, campaign.Id, "ipfs://new-image"))

	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, "new desc", info.Description)
	assert.Equal(t, "new story", info.Story)
	assert.Equal(t, []string{"200 wells"}, info.Impacts)
	assert.Equal(t, "ipfs://new-image", info.ImageURI)
}

func TestOwnerUpdates_NotOwner(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	assert.ErrorIs(t, campaigns.UpdateDescription(testDonor, campaign.Id, "x", "y"), ErrNotOwner)
	assert.ErrorIs(t, campaigns.UpdateImageURI(testDonor, campaign.Id, "z"), ErrNotOwner)
	assert.ErrorIs(t, campaigns.UpdateDescription(testOwner, 9999, "x", "y"), ErrCampaignNotFound)
}

func TestUpdateCampaign(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	// 只更新给定字段，未给定的保持原值
	desc := "new desc"
	impacts := []string{"200 wells"}
	require.NoError(t, campaigns.UpdateCampaign(testOwner, campaign.Id, CampaignUpdate{
		Description: &desc,
		Impacts:     &impacts,
	}))

	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, "new desc", info.Description)
	assert.Equal(t, []string{"200 wells"}, info.Impacts)
	assert.Equal(t, "Long story", info.Story)
	assert.Equal(t, "ipfs://image", info.ImageURI)

	// 空更新是空操作
	require.NoError(t, campaigns.UpdateCampaign(testOwner, campaign.Id, CampaignUpdate{}))
}

func TestUpdateCampaign_NotOwnerAppliesNothing(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createCampaign(t, db, testOwner, testGoal)

	desc := "hijacked"
	uri := "ipfs://hijacked"
	err := campaigns.UpdateCampaign(testDonor, campaign.Id, CampaignUpdate{
		Description: &desc,
		ImageURI:    &uri,
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	// 拒绝后任何字段都不生效
	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, "Water for villages", info.Description)
	assert.Equal(t, "ipfs://image", info.ImageURI)
}

func TestCreditDonation_Gating(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	now := time.Now()

	// 未审核
	campaign := createCampaign(t, db, testOwner, testGoal)
	err := campaigns.CreditDonation(db, campaign.Id, 1000, now)
	assert.ErrorIs(t, err, ErrCampaignNotVerified)

	// 已审核但未激活
	require.NoError(t, campaigns.VerifyCampaign(testVerifier, campaign.Id, true))
	err = campaigns.CreditDonation(db, campaign.Id, 1000, now)
	assert.ErrorIs(t, err, ErrCampaignNotActive)

	// 已结束
	require.NoError(t, campaigns.SetActive(testVerifier, campaign.Id, true))
	backdateCampaign(t, db, campaign.Id, 31)
	err = campaigns.CreditDonation(db, campaign.Id, 1000, time.Now())
	assert.ErrorIs(t, err, ErrCampaignEnded)
}

func TestCreditDonation(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createActiveCampaign(t, db, testOwner, testGoal)

	require.NoError(t, campaigns.CreditDonation(db, campaign.Id, 1000, time.Now()))
	require.NoError(t, campaigns.CreditDonation(db, campaign.Id, 500, time.Now()))

	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), info.RaisedAmount)
}

func TestWithdrawFunds_Gating(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createActiveCampaign(t, db, testOwner, testGoal)
	require.NoError(t, campaigns.CreditDonation(db, campaign.Id, 1000, time.Now()))

	// 未达目标且未结束时不可提取
	assert.ErrorIs(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 500), ErrCannotWithdraw)
	assert.ErrorIs(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 0), ErrInvalidAmount)
	assert.ErrorIs(t, campaigns.WithdrawFunds(testDonor, campaign.Id, 500), ErrNotOwner)
	assert.ErrorIs(t, campaigns.WithdrawFunds(testOwner, 9999, 500), ErrCampaignNotFound)
}

func TestWithdrawFunds_GoalReached(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createActiveCampaign(t, db, testOwner, 1000)
	require.NoError(t, campaigns.CreditDonation(db, campaign.Id, 1200, time.Now()))

	// 超出可用余额
	assert.ErrorIs(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 1201), ErrInsufficientBalance)

	// 提取后可用余额精确减少
	require.NoError(t, campaigns.WithdrawFunds(strings.ToUpper(testOwner), campaign.Id, 700))
	info, err := campaigns.GetCampaignInfo(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), info.RaisedAmount)
	assert.Equal(t, int64(700), info.WithdrawnAmount)

	assert.ErrorIs(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 501), ErrInsufficientBalance)
	require.NoError(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 500))

	// 提取记录完整
	var records []model.WithdrawalRecordModel
	require.NoError(t, db.Order("id ASC").Find(&records).Error)
	require.Len(t, records, 2)
	assert.Equal(t, int64(700), records[0].Amount)
	assert.Equal(t, int64(500), records[1].Amount)
	assert.Equal(t, strings.ToLower(testOwner), records[0].Recipient)
}

func TestWithdrawFunds_AfterEnd(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)
	campaign := createActiveCampaign(t, db, testOwner, testGoal)
	require.NoError(t, campaigns.CreditDonation(db, campaign.Id, 800, time.Now()))

	// 未达目标但活动已结束，允许提取
	backdateCampaign(t, db, campaign.Id, 31)
	require.NoError(t, campaigns.WithdrawFunds(testOwner, campaign.Id, 800))
}

func TestCampaignQueries(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 250)
	campaigns := NewCampaignLogic(db)

	first := createActiveCampaign(t, db, testOwner, testGoal)
	second := createCampaign(t, db, testDonor, testGoal)
	require.NoError(t, campaigns.SetFeaturedCampaign(testVerifier, first.Id, true))

	all, err := campaigns.GetAllCampaigns()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byOwner, err := campaigns.GetCampaignsByOwner(strings.ToUpper(testOwner))
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, first.Id, byOwner[0].Id)

	verified, err := campaigns.GetVerifiedCampaigns()
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, first.Id, verified[0].Id)

	featured, err := campaigns.GetFeaturedCampaigns()
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, first.Id, featured[0].Id)

	_, err = campaigns.GetCampaignInfo(second.Id + 100)
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestGetCampaignStats(t *testing.T) {
	db := newTestDB(t)
	seedPlatform(t, db, 0)
	campaigns := NewCampaignLogic(db)
	donations := NewDonationLogic(db, testService)
	campaign := createActiveCampaign(t, db, testOwner, 2_000_000_000_000_000)

	_, err := donations.ProcessDonation(campaign.Id, testDonor, 1_000_000_000_000_000, "ipfs://r1")
	require.NoError(t, err)
	_, err = donations.ProcessDonation(campaign.Id, testDonor2, 1_000_000_000_000_000, "ipfs://r2")
	require.NoError(t, err)

	stats, err := campaigns.GetCampaignStats(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(2_000_000_000_000_000), stats["raised_amount"])
	assert.Equal(t, int64(2), stats["donation_count"])
	assert.Equal(t, int64(2), stats["donor_count"])
	assert.Equal(t, float64(100), stats["completion_percentage"])
	assert.Equal(t, true, stats["goal_reached"])
	assert.Equal(t, false, stats["has_ended"])
}
