package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/orderlens/orderlens/internal/answer"
	"github.com/orderlens/orderlens/internal/config"
	"github.com/orderlens/orderlens/internal/query"
)

type queryBatchRequest struct {
	Queries []string `json:"queries"`
}

type queryBatchResponse struct {
	Results []answer.Outcome `json:"results"`
}

type translateRequest struct {
	Query string `json:"query"`
}

func handleQueryBatch(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Answerer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query pipeline is not configured", false, nil)
		return
	}

	var request queryBatchRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if request.Queries == nil {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERIES_REQUIRED", "queries is required", false, nil)
		return
	}
	if limit := cfg.Query.MaxBatchSize; limit > 0 && len(request.Queries) > limit {
		writeError(r.Context(), w, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE", "too many queries in one request", false, map[string]any{
			"max_batch_size": limit,
			"queries":        len(request.Queries),
		})
		return
	}

	ctx := r.Context()
	if cfg.Query.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Query.BatchTimeout)
		defer cancel()
	}

	results, err := deps.Answerer.AnswerBatch(ctx, request.Queries)
	if err != nil {
		code := "BATCH_FAILED"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			code = "BATCH_TIMEOUT"
		case errors.Is(err, query.ErrStoreUnavailable):
			code = "STORE_UNAVAILABLE"
		}
		writeError(r.Context(), w, http.StatusServiceUnavailable, code, "query batch failed", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, queryBatchResponse{Results: results})
}

func handleTranslate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Translator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "query translation is not configured", false, nil)
		return
	}

	var request translateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid translation request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Query) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUERY_REQUIRED", "query is required", false, nil)
		return
	}

	result, err := deps.Translator.Translate(r.Context(), request.Query)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate query", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sql":      result.SQL,
		"provider": result.Provider,
		"model":    result.Model,
	})
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema is not configured", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table":   deps.Schema.Table(),
		"columns": deps.Schema.Columns(),
		"row_id":  query.RowIDColumn,
	})
}
