package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/model"
)

type hoverRequest struct {
	ItemID *uint64 `json:"item_id"`
}

type keybindRequest struct {
	Pressed *bool `json:"pressed"`
}

type stateRequest struct {
	WorldID        *uint32 `json:"world_id"`
	InCombat       *bool   `json:"in_combat"`
	InContent      *bool   `json:"in_content"`
	KeybindPressed *bool   `json:"keybind_pressed"`
}

// ItemsResponse is the overlay view.
type ItemsResponse struct {
	Visible        bool               `json:"visible"`
	Pending        bool               `json:"pending"`
	LastPriceCheck *time.Time         `json:"last_price_check,omitempty"`
	Items          []model.PricedItem `json:"items"`
}

// ModeResponse describes one price mode.
type ModeResponse struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Selected    bool   `json:"selected"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == nil {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if *req.ItemID > model.MaxRawInterest {
		writeError(w, http.StatusBadRequest, "item_id is out of range")
		return
	}

	task := s.deps.Hovers.Interest(*req.ItemID)
	resp := map[string]any{"status": "accepted", "scheduled": task != nil}
	if task != nil {
		resp["item_id"] = task.ItemID
		resp["hq"] = task.HQ
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// handleState applies a partial state update; omitted fields keep their value.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.deps.Session.Apply(func(st *game.State) {
		if req.WorldID != nil {
			st.WorldID = *req.WorldID
		}
		if req.InCombat != nil {
			st.InCombat = *req.InCombat
		}
		if req.InContent != nil {
			st.InContent = *req.InContent
		}
		if req.KeybindPressed != nil {
			st.KeybindPressed = *req.KeybindPressed
		}
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleKeybind is the narrow update the client sends on every key
// transition.
func (s *Server) handleKeybind(w http.ResponseWriter, r *http.Request) {
	var req keybindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Pressed == nil {
		writeError(w, http.StatusBadRequest, "pressed is required")
		return
	}
	s.deps.Session.SetKeybind(*req.Pressed)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItems(w http.ResponseWriter, _ *http.Request) {
	cfg := s.config()
	var last time.Time
	if s.deps.LastPriceCheck != nil {
		last = s.deps.LastPriceCheck()
	}

	resp := ItemsResponse{
		Visible: OverlayVisible(cfg, s.deps.Session.State(), last, s.deps.Now()),
		Pending: s.deps.Hovers.Pending(),
		Items:   s.deps.Store.Snapshot(),
	}
	if !last.IsZero() {
		resp.LastPriceCheck = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearItems(w http.ResponseWriter, _ *http.Request) {
	s.deps.Store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	selected := s.config().Pricing.PriceMode
	all := s.deps.Modes.All()
	out := make([]ModeResponse, 0, len(all))
	for _, m := range all {
		out = append(out, ModeResponse{
			Index:       m.Index,
			Name:        m.Name,
			Description: m.Description,
			Selected:    m.Index == selected,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// OverlayVisible reports whether the overlay should be drawn. After
// hide_after_secs without a price check it hides, unless show_by_keybind
// is set and the keybind is active.
func OverlayVisible(cfg *config.Config, st game.State, lastCheck, now time.Time) bool {
	if !cfg.Overlay.Show {
		return false
	}
	hideAfter := time.Duration(cfg.Overlay.HideAfterSecs) * time.Second
	if hideAfter <= 0 || lastCheck.IsZero() || now.Sub(lastCheck) <= hideAfter {
		return true
	}
	keybindActive := !cfg.Keybind.Enabled || st.KeybindPressed
	return cfg.Overlay.ShowByKeybind && keybindActive
}
