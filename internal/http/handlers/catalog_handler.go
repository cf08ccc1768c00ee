// Statistical-test catalog handler. The catalog is small, seeded at startup,
// and effectively immutable, so the endpoint supports weak ETags and keeps
// answering from the built-in defaults when the database is down.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListStatisticalTests godoc
// @ID          listStatisticalTests
// @Summary     List the statistical-test catalog
// @Description Returns every catalog entry with its applicability conditions
// @Description and SPSS/Excel walkthroughs. Supports weak ETag revalidation
// @Description via If-None-Match. When the database is unreachable the
// @Description built-in defaults are served and X-Degraded: true is set.
// @Tags        Catalog
// @Produce     json
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
//
// @Success     200  {array}   domain.StatisticalTest
// @Header      200  {string}  ETag        "Weak ETag for the current catalog"
// @Header      200  {string}  X-Degraded  "Set to \"true\" when serving built-in defaults"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /statistical-tests [get]
func (h *Handlers) ListStatisticalTests(c *gin.Context) {
	ctx := c.Request.Context()

	etag := h.catalogSvc.ETag(ctx)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return
	}

	tests, degraded, err := h.catalogSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load the catalog")
		return
	}
	if degraded {
		c.Header("X-Degraded", "true")
	}
	ok(c, http.StatusOK, tests)
}
