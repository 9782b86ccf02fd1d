package http

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
	"github.com/m-mizutani/relcheck/pkg/domain/model"
)

// StatusHandler handles release status queries
type StatusHandler struct {
	statusUC     interfaces.ReleaseStatusUseCase
	defaultOwner string
	defaultRepo  string
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(statusUC interfaces.ReleaseStatusUseCase, defaultOwner, defaultRepo string) *StatusHandler {
	return &StatusHandler{
		statusUC:     statusUC,
		defaultOwner: defaultOwner,
		defaultRepo:  defaultRepo,
	}
}

// statusRequest is the inbound JSON body. PRNumbers is a pointer so a
// missing field can be told apart from an empty list.
type statusRequest struct {
	ReleaseTag string `json:"release_tag"`
	PRNumbers  *[]int `json:"pr_numbers"`
	RepoOwner  string `json:"repo_owner"`
	RepoName   string `json:"repo_name"`
}

// Handle processes a batch status query
func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	// Batch ID correlates the fan-out logs of one request
	logger := ctxlog.From(r.Context()).With("batch_id", uuid.NewString())
	ctx := ctxlog.With(r.Context(), logger)

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode request body", "error", err)
		writeError(w, goerr.Wrap(err, "invalid JSON body"), http.StatusBadRequest)
		return
	}

	if req.ReleaseTag == "" {
		writeError(w, goerr.New("release_tag is required"), http.StatusBadRequest)
		return
	}
	if req.PRNumbers == nil {
		writeError(w, goerr.New("pr_numbers must be an array"), http.StatusBadRequest)
		return
	}

	owner := req.RepoOwner
	if owner == "" {
		owner = h.defaultOwner
	}
	repo := req.RepoName
	if repo == "" {
		repo = h.defaultRepo
	}

	query := &model.ReleaseQuery{
		Owner:      owner,
		Repo:       repo,
		ReleaseTag: req.ReleaseTag,
		PRNumbers:  *req.PRNumbers,
	}

	logger.Info("Checking release status",
		"owner", owner,
		"repo", repo,
		"release_tag", req.ReleaseTag,
		"pr_count", len(query.PRNumbers),
	)

	results, err := h.statusUC.CheckRelease(ctx, query)
	if err != nil {
		logger.Error("Failed to check release status", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(results); err != nil {
		logger.Error("Failed to encode status response", "error", err)
	}
}
