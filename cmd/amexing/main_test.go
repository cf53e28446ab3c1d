package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/app"
	_ "github.com/amexing/amexing-ops/internal/testing/guard"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	app.RefreshTestMode()
	require.True(t, app.InTestMode())
	main()
}
