package main

import (
	"strconv"
	"testing"

	"zenfi-wallet/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The --amount flag only shapes the optimistic delta shown before the server
// responds, so its default has to agree with the server's configured reward.
func TestClaimCmd_AmountDefaultMatchesServerReward(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	a := &app{}
	flag := a.claimCmd().Flags().Lookup("amount")
	require.NotNil(t, flag)
	assert.Equal(t, strconv.FormatInt(cfg.Claim.RewardAmount, 10), flag.DefValue)
}
