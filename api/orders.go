package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/pkg/export"
)

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	orders, err := s.orders.Find(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, err := s.orders.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// createOrder answers 201 as soon as the order is persisted; the pour itself
// runs asynchronously and is tracked through the order status.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.OrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.orders.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, err := s.orders.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// exportOrders streams the order history as CSV or JSON.
func (s *Server) exportOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	orders, err := s.orders.Find(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := export.WriteJSON(w, orders); err != nil {
			s.log.Errorf("export orders: %v", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		if err := export.WriteCSV(w, orders); err != nil {
			s.log.Errorf("export orders: %v", err)
		}
	default:
		writeError(w, apperrors.NewIncorrectInput("format must be json or csv", apperrors.SlugIncorrectInput))
	}
}

// makeCocktail drives the machine directly, without an order record. The
// request blocks until the machine acknowledged the full plan.
func (s *Server) makeCocktail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Steps []model.OrderStepRequest `json:"steps"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	steps, err := s.orders.PrepareSteps(r.Context(), req.Steps)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.controller.MakeCocktail(r.Context(), steps); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"response": true})
}
