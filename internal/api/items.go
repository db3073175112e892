package api

import (
	"errors"
	"fmt"
	"net/http"

	"whatsnext/internal/auth"
	"whatsnext/internal/authz"
	"whatsnext/internal/httputils"
	"whatsnext/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type itemInput struct {
	Body string `json:"body"`
}

// listItems returns the caller's items, newest first
func (r *Router) listItems(w http.ResponseWriter, req *http.Request) {
	id := auth.IdentityFromContext(req.Context())

	items, err := r.store.ListItems(req.Context(), id.UserID)
	if err != nil {
		r.internalError(w, req, "Failed to list items", err)
		return
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{"data": items})
}

func (r *Router) createItem(w http.ResponseWriter, req *http.Request) {
	id := auth.IdentityFromContext(req.Context())

	var in itemInput
	if err := httputils.DecodeJSON(req, &in); err != nil {
		r.badBody(w, req, err)
		return
	}

	item := store.Item{
		ItemID:    uuid.NewString(),
		UserID:    id.UserID,
		Body:      in.Body,
		CreatedAt: store.Timestamp(r.now()),
	}
	if err := r.store.CreateItem(req.Context(), item); err != nil {
		r.internalError(w, req, "Failed to create item", err)
		return
	}

	httputils.OK(w, http.StatusCreated, httputils.Envelope{"data": item})
}

// updateItem replaces an item's body. Any authenticated user may update any item.
func (r *Router) updateItem(w http.ResponseWriter, req *http.Request) {
	itemID := mux.Vars(req)["itemId"]

	var in itemInput
	if err := httputils.DecodeJSON(req, &in); err != nil {
		r.badBody(w, req, err)
		return
	}

	if _, err := r.store.GetItem(req.Context(), itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputils.Fail(w, http.StatusNotFound, "Post not found.")
			return
		}
		r.internalError(w, req, "Failed to load item", err)
		return
	}

	if err := r.store.UpdateItemBody(req.Context(), itemID, in.Body); err != nil {
		r.internalError(w, req, "Failed to update item", err)
		return
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{"msg": fmt.Sprintf("Post %s updated successfully!", itemID)})
}

// deleteItem removes an item owned by the caller
func (r *Router) deleteItem(w http.ResponseWriter, req *http.Request) {
	itemID := mux.Vars(req)["itemId"]

	item, err := r.store.GetItem(req.Context(), itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputils.Fail(w, http.StatusNotFound, "Item not found.")
			return
		}
		r.internalError(w, req, "Failed to load item", err)
		return
	}

	decision := r.authorizer.Authorize(&authz.Request{
		Identity: auth.IdentityFromContext(req.Context()),
		Action:   "delete",
		Resource: "item/" + itemID,
		OwnerID:  item.UserID,
	})
	if !decision.Allowed() {
		httputils.Fail(w, http.StatusForbidden, "Unauthorised.")
		return
	}

	if err := r.store.DeleteItem(req.Context(), itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputils.Fail(w, http.StatusNotFound, "Item not found.")
			return
		}
		r.internalError(w, req, "Failed to delete item", err)
		return
	}

	httputils.OK(w, http.StatusOK, httputils.Envelope{"msg": "Item deleted successfully."})
}
