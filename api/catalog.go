package api

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/quentinlb/cocktaild/core/apperrors"
	"github.com/quentinlb/cocktaild/core/model"
)

func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ings, err := s.ingredients.Find(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ings)
}

func (s *Server) getIngredient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ing, err := s.ingredients.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

func (s *Server) createIngredient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var ing model.Ingredient
	if err := decodeBody(r, &ing); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.ingredients.Create(r.Context(), ing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateIngredient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var ing model.Ingredient
	if err := decodeBody(r, &ing); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.ingredients.Update(r.Context(), ps.ByName("id"), ing)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteIngredient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.ingredients.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var available *bool
	if raw := r.URL.Query().Get("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apperrors.NewIncorrectInput("available must be a boolean", apperrors.SlugIncorrectInput))
			return
		}
		available = &v
	}
	recipes, err := s.recipes.Find(r.Context(), available)
	if err != nil {
		writeError(w, err)
		return
	}
	// withSteps=false trims the payload for list views.
	if raw := r.URL.Query().Get("withSteps"); raw != "" {
		withSteps, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apperrors.NewIncorrectInput("withSteps must be a boolean", apperrors.SlugIncorrectInput))
			return
		}
		if !withSteps {
			for i := range recipes {
				recipes[i].Steps = nil
			}
		}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	recipe, err := s.recipes.FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var recipe model.Recipe
	if err := decodeBody(r, &recipe); err != nil {
		writeError(w, err)
		return
	}
	created, err := s.recipes.Create(r.Context(), recipe)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var recipe model.Recipe
	if err := decodeBody(r, &recipe); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.recipes.Update(r.Context(), ps.ByName("id"), recipe)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.recipes.Delete(r.Context(), ps.ByName("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
