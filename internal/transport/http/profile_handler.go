package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/kidsevents/marketplace_backend/internal/domain"
	"github.com/kidsevents/marketplace_backend/internal/util"
)

const publicProfilesCacheControl = "public, s-maxage=300, stale-while-revalidate=600"

type ProfileCatalog interface {
	PublicProfiles(ctx context.Context, forceRefresh bool) ([]domain.ProfileListItem, error)
	Invalidate()
}

type ProfileHandler struct {
	catalog ProfileCatalog
	refresh *rate.Limiter
}

// RegisterProfiles mounts the public listing and the admin invalidation
// route. A nil limiter lets every forced refresh through.
func RegisterProfiles(e *echo.Echo, catalog ProfileCatalog, refreshLimiter *rate.Limiter, admin AdminCredentials) {
	handler := &ProfileHandler{catalog: catalog, refresh: refreshLimiter}

	e.GET("/api/profiles/public", handler.listPublic)

	group := e.Group("/api/admin/profiles", RequireAdmin(admin))
	group.POST("/cache/invalidate", handler.invalidate)
}

func (h *ProfileHandler) listPublic(c echo.Context) error {
	force := parseRefresh(c.QueryParam("refresh"))
	if force && h.refresh != nil && !h.refresh.Allow() {
		log.Printf("profiles: forced refresh throttled, serving cached listing")
		force = false
	}

	items, err := h.catalog.PublicProfiles(c.Request().Context(), force)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Printf("profiles: load public listing: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load profiles"))
	}

	c.Response().Header().Set("Cache-Control", publicProfilesCacheControl)
	return c.JSON(http.StatusOK, util.Data("profiles", items))
}

func (h *ProfileHandler) invalidate(c echo.Context) error {
	h.catalog.Invalidate()
	subject := "api-key"
	if claims, ok := CurrentClaims(c); ok && claims.Subject != "" {
		subject = claims.Subject
	}
	log.Printf("profiles: cache invalidated by %s", subject)
	return c.NoContent(http.StatusNoContent)
}

func parseRefresh(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
