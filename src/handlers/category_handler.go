package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"unify-server/src/categorize"
	"unify-server/src/models"
)

func GetCategories(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := provider.ListRules(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("failed to list category rules")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if rules == nil {
			rules = []models.CategoryRule{}
		}
		writeJSON(w, http.StatusOK, rules)
	}
}

func CreateCategory(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rule models.CategoryRule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if rule.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		created, err := provider.CreateRule(r.Context(), rule)
		if err != nil {
			logger.Error().Err(err).Str("name", rule.Name).Msg("failed to create category rule")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateCategory(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rule models.CategoryRule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		rule.ID = chi.URLParam(r, "rule_id")
		if rule.ID == "" {
			http.Error(w, "rule id is required", http.StatusBadRequest)
			return
		}

		updated, err := provider.UpdateRule(r.Context(), rule)
		if err != nil {
			logger.Error().Err(err).Str("rule_id", rule.ID).Msg("failed to update category rule")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteCategory(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "rule_id")
		if id == "" {
			http.Error(w, "rule id is required", http.StatusBadRequest)
			return
		}
		if err := provider.DeleteRule(r.Context(), id); err != nil {
			logger.Error().Err(err).Str("rule_id", id).Msg("failed to delete category rule")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetCategoryOverrides(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overrides, err := provider.ListOverrides(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("failed to list category overrides")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if overrides == nil {
			overrides = models.TransactionCategoryMap{}
		}
		writeJSON(w, http.StatusOK, overrides)
	}
}

// SetCategoryOverride pins a transaction to a category by reference. An empty
// category clears the override instead.
func SetCategoryOverride(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reference string `json:"reference"`
			Category  string `json:"category"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if req.Reference == "" {
			http.Error(w, "reference is required", http.StatusBadRequest)
			return
		}

		var err error
		if req.Category == "" {
			err = provider.RemoveOverride(r.Context(), req.Reference)
		} else {
			err = provider.SetOverride(r.Context(), req.Reference, req.Category)
		}
		if err != nil {
			logger.Error().Err(err).Str("reference", req.Reference).Msg("failed to store category override")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteCategoryOverride(provider categorize.Provider, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := chi.URLParam(r, "reference")
		if reference == "" {
			http.Error(w, "reference is required", http.StatusBadRequest)
			return
		}
		if err := provider.RemoveOverride(r.Context(), reference); err != nil {
			logger.Error().Err(err).Str("reference", reference).Msg("failed to remove category override")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
