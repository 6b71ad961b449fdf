package handlers

import "net/http"

func (a *App) ModelsList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"providers": a.Registry.Describe()})
}
