package checkgrp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ardanlabs/ledger/app/services/node/handlers/debug/checkgrp"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_Checks(t *testing.T) {
	st, err := state.New(context.Background(), state.Config{
		Storage:    memory.New(),
		Difficulty: 1,
	})
	require.NoError(t, err)

	_, err = st.MineNewBlock(context.Background())
	require.NoError(t, err)

	h := checkgrp.Handlers{
		Build: "test",
		Log:   zap.NewNop().Sugar(),
		State: st,
	}

	w := httptest.NewRecorder()
	h.Readiness(w, httptest.NewRequest(http.MethodGet, "/debug/readiness", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/debug/liveness", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Status string `json:"status"`
		Build  string `json:"build"`
		Height int    `json:"height"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, "up", got.Status)
	require.Equal(t, "test", got.Build)
	require.Equal(t, 2, got.Height)
}
