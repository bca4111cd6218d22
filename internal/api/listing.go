package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

// ListStudents returns the whole collection; no pagination or filtering.
func (h *Handler) ListStudents(c *gin.Context) {
	if payload, ok := h.cache.Get(c.Request.Context(), cacheKeyStudents); ok {
		c.Data(http.StatusOK, jsonContentType, payload)
		return
	}

	students, err := h.students.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch students")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.log.Debug().Int("count", len(students)).Msg("Fetched students")

	payload, err := json.Marshal(students)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.cache.Set(c.Request.Context(), cacheKeyStudents, payload)
	c.Data(http.StatusOK, jsonContentType, payload)
}

func (h *Handler) ListBuses(c *gin.Context) {
	if payload, ok := h.cache.Get(c.Request.Context(), cacheKeyBuses); ok {
		c.Data(http.StatusOK, jsonContentType, payload)
		return
	}

	buses, err := h.buses.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch buses")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.log.Debug().Int("count", len(buses)).Msg("Fetched buses")

	payload, err := json.Marshal(buses)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error", "error": err.Error()})
		return
	}

	h.cache.Set(c.Request.Context(), cacheKeyBuses, payload)
	c.Data(http.StatusOK, jsonContentType, payload)
}
