package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bat-ads/internal/adapter/catalog"
	"bat-ads/internal/config"
	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/eligibility"
)

func TestServiceConfig(t *testing.T) {
	t.Setenv("ADS_PAYMENT_ID", "27a39b2f-9b2e-4eb0-bbb2-2f84447496e7")
	t.Setenv("ADS_MAX_PER_HOUR", "ad_notification=2")
	t.Setenv("ADS_MAX_PER_DAY", "ad_notification=8,new_tab_page_ad=20")
	t.Setenv("ADS_RETRY_BASE_BACKOFF", "30s")
	cfg, err := config.Load()
	require.NoError(t, err)

	sc := serviceConfig(cfg)
	assert.Equal(t, "27a39b2f-9b2e-4eb0-bbb2-2f84447496e7", sc.Confirmation.PaymentID)
	assert.Equal(t, 30*time.Second, sc.Confirmation.BaseBackoff)
	assert.Equal(t, 20, sc.Confirmation.MinUnblindedTokens)
	assert.Equal(t, map[domain.AdType]eligibility.Permissions{
		domain.AdTypeNotification: {MaxPerHour: 2, MaxPerDay: 8},
		domain.AdTypeNewTabPage:   {MaxPerDay: 20},
	}, sc.Permissions)

	iv := intervals(cfg)
	assert.Equal(t, time.Minute, iv.Catalog)
	assert.Equal(t, 15*time.Second, iv.Retry)
}

func TestOpenCatalogWithoutPath(t *testing.T) {
	cat, refresher, err := openCatalog(config.Config{})
	require.NoError(t, err)
	assert.Nil(t, refresher)
	assert.Zero(t, cat.Count())
}

func TestCatalogCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"catalog", "--campaigns", "2", "--creatives", "3", "--seed", "7"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	doc, err := catalog.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Creatives, 6)
}
