package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"unify-server/src/models"
	"unify-server/src/refresh"
	"unify-server/src/truelayer"
)

// GetConnections reports which sources are connected and when the cache was
// last refreshed.
func GetConnections(store *refresh.ConfigStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := store.Load(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("failed to load connections")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := map[string]interface{}{
			"lastSyncedAt": cfg.LastSyncedAt,
			"trueLayer": map[string]interface{}{
				"connected": cfg.TrueLayer != nil,
			},
			"trading212": map[string]interface{}{
				"connected": cfg.Trading212 != nil,
			},
		}
		if cfg.TrueLayer != nil {
			resp["trueLayer"] = map[string]interface{}{
				"connected": true,
				"accounts":  len(cfg.TrueLayer.Accounts),
				"cards":     len(cfg.TrueLayer.Cards),
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// TrueLayerLink returns the hosted consent URL for connecting a bank.
func TrueLayerLink(client *truelayer.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"url": client.AuthLink(uuid.NewString()),
		})
	}
}

// TrueLayerExchange completes the connect flow with the consent callback
// code, then schedules a full refresh.
func TrueLayerExchange(client *truelayer.Client, source DataSource, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			http.Error(w, "code is required", http.StatusBadRequest)
			return
		}

		if err := client.ExchangeCode(r.Context(), req.Code); err != nil {
			logger.Error().Err(err).Msg("code exchange failed")
			http.Error(w, "failed to connect bank", http.StatusBadGateway)
			return
		}

		if err := source.ForceStale(r.Context()); err != nil {
			logger.Error().Err(err).Msg("failed to mark cache stale")
		}
		source.RefreshAllAsync()
		w.WriteHeader(http.StatusNoContent)
	}
}

// DisconnectTrueLayer drops the stored bank connection.
func DisconnectTrueLayer(store *refresh.ConfigStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearTrueLayerAccount(r.Context()); err != nil {
			logger.Error().Err(err).Msg("failed to clear bank connection")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SaveTrading212 stores the Trading212 API key and schedules a refresh.
func SaveTrading212(store *refresh.ConfigStore, source DataSource, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Key    string `json:"key"`
			Secret string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
			http.Error(w, "key is required", http.StatusBadRequest)
			return
		}

		account := &models.Trading212Account{
			Key:     req.Key,
			Secret:  req.Secret,
			AddedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := store.SaveTrading212Account(r.Context(), account); err != nil {
			logger.Error().Err(err).Msg("failed to store trading credentials")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := source.ForceStale(r.Context()); err != nil {
			logger.Error().Err(err).Msg("failed to mark cache stale")
		}
		source.RefreshAllAsync()
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteTrading212 drops the stored Trading212 credentials.
func DeleteTrading212(store *refresh.ConfigStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.ClearTrading212Account(r.Context()); err != nil {
			logger.Error().Err(err).Msg("failed to clear trading credentials")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TriggerSync forces a refresh regardless of staleness. The refresh runs in
// the background; progress arrives over the event stream.
func TriggerSync(source DataSource, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := source.ForceStale(r.Context()); err != nil {
			logger.Error().Err(err).Msg("failed to mark cache stale")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		source.RefreshAllAsync()
		w.WriteHeader(http.StatusAccepted)
	}
}
