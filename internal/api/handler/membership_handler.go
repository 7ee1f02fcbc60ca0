package handler

import (
	"log/slog"
	"net/http"

	"vidly/internal/api/handler/dto"
	"vidly/internal/domain/membership"
)

type MembershipHandler struct {
	service membership.Service
	logger  *slog.Logger
}

func NewMembershipHandler(s membership.Service, l *slog.Logger) *MembershipHandler {
	if s == nil {
		panic("membership service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &MembershipHandler{service: s, logger: l.With("component", "MembershipHandler")}
}

// ListMembershipTypes handles GET /api/membershiptypes
// @Summary List membership types
// @Tags MembershipTypes
// @Produce json
// @Success 200 {array} dto.MembershipTypeResponse "Membership tiers"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /membershiptypes [get]
// @Security BearerAuth
func (h *MembershipHandler) ListMembershipTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListMembershipTypes(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list membership types", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.MembershipTypeResponse, len(types))
	for i, mt := range types {
		resp[i] = dto.NewMembershipTypeResponse(mt)
	}
	respondJSON(w, http.StatusOK, resp)
}
