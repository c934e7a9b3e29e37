package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"items-api/models"
	"items-api/store"
	"items-api/validation"
)

// ItemController maps item requests onto an ItemStore.
type ItemController struct {
	store  store.ItemStore
	logger *slog.Logger
}

func NewItemController(s store.ItemStore, logger *slog.Logger) *ItemController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemController{store: s, logger: logger}
}

func (c *ItemController) GetItems(req Request, res Response) {
	items, err := c.store.List(req.Context())
	if err != nil {
		c.serverError(res, "Error retrieving items", err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	c.write(res, http.StatusOK, OK(items))
}

func (c *ItemController) GetItem(req Request, res Response) {
	id := req.Param("id")
	item, err := c.store.Get(req.Context(), id)
	if errors.Is(err, store.ErrItemNotFound) {
		c.write(res, http.StatusNotFound, Fail("Item not found"))
		return
	}
	if err != nil {
		c.serverError(res, "Error retrieving item", err)
		return
	}
	c.write(res, http.StatusOK, OK(item))
}

func (c *ItemController) CreateItem(req Request, res Response) {
	in, err := validation.DecodeCreate(req.Body())
	if c.rejectInvalid(res, err) {
		return
	}
	if err != nil {
		c.serverError(res, "Error creating item", err)
		return
	}

	item, err := c.store.Insert(req.Context(), in)
	if err != nil {
		c.serverError(res, "Error creating item", err)
		return
	}
	c.write(res, http.StatusCreated, OK(item))
}

func (c *ItemController) UpdateItem(req Request, res Response) {
	id := req.Param("id")
	in, err := validation.DecodeUpdate(req.Body())
	if c.rejectInvalid(res, err) {
		return
	}
	if err != nil {
		c.serverError(res, "Error updating item", err)
		return
	}

	item, err := c.store.Update(req.Context(), id, in)
	if errors.Is(err, store.ErrItemNotFound) {
		c.write(res, http.StatusNotFound, Fail("Item not found"))
		return
	}
	if err != nil {
		c.serverError(res, "Error updating item", err)
		return
	}
	c.write(res, http.StatusOK, OK(item))
}

func (c *ItemController) DeleteItem(req Request, res Response) {
	id := req.Param("id")
	err := c.store.Delete(req.Context(), id)
	if errors.Is(err, store.ErrItemNotFound) {
		c.write(res, http.StatusNotFound, Fail("Item not found"))
		return
	}
	if err != nil {
		c.serverError(res, "Error deleting item", err)
		return
	}
	if err := res.Status(http.StatusNoContent).End(); err != nil {
		c.logger.Error("failed to write response", "error", err)
	}
}

// rejectInvalid answers 413 for an oversized body and 400 for a validation
// failure.
func (c *ItemController) rejectInvalid(res Response, err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.write(res, http.StatusRequestEntityTooLarge, Fail("Request body too large"))
		return true
	}
	vErr, ok := validation.IsValidationError(err)
	if !ok {
		return false
	}
	env := Fail("Validation error")
	for _, f := range vErr.Fields {
		env.Errors = append(env.Errors, FieldError{Field: f.Field, Message: f.Message})
	}
	c.write(res, http.StatusBadRequest, env)
	return true
}

func (c *ItemController) serverError(res Response, message string, err error) {
	c.logger.Error(message, "error", err)
	env := Fail(message)
	env.Error = err.Error()
	c.write(res, http.StatusInternalServerError, env)
}

func (c *ItemController) write(res Response, status int, env Envelope) {
	if err := res.Status(status).JSON(env); err != nil {
		c.logger.Error("failed to write response", "status", status, "error", err)
	}
}
