// Wizard recommendation handler. The decision logic is a fixed rule table
// over categorical answers; this endpoint evaluates one answer set in a
// single round trip for clients that do not run the step-by-step session.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bahithi/platform-backend/internal/services"
	"github.com/bahithi/platform-backend/internal/wizard"
)

// WizardRequest carries the collected answers keyed by step number
// ("1".."5"). Unanswered steps are simply omitted.
type WizardRequest struct {
	Answers map[string]string `json:"answers"`
}

// WizardResponse lists every recommendation whose rule matched, in rule-table
// order. An empty list means no rule matched.
type WizardResponse struct {
	Recommendations []wizard.Recommendation `json:"recommendations"`
}

// RecommendTests godoc
// @ID          recommendTests
// @Summary     Recommend statistical tests
// @Description Evaluates the fixed decision table against the submitted
// @Description wizard answers and returns every matching recommendation.
// @Tags        Wizard
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.WizardRequest  true  "Wizard answers keyed by step number"
//
// @Success     200  {object}  handlers.WizardResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid JSON body"
// @Failure     422  {object}  handlers.ErrorResponse "Invalid step keys"
// @Router      /wizard/recommendations [post]
func (h *Handlers) RecommendTests(c *gin.Context) {
	var req WizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	answers := wizard.Answers{}
	var ve services.ValidationError
	for k, v := range req.Answers {
		step, err := strconv.Atoi(k)
		if err != nil || step < 1 || step > wizard.TotalSteps {
			ve.Fields = append(ve.Fields, services.FieldError{Field: "answers." + k, Reason: "step must be 1.." + strconv.Itoa(wizard.TotalSteps)})
			continue
		}
		answers[step] = v
	}
	if len(ve.Fields) > 0 {
		failFields(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, ve.Error(), ve.Fields)
		return
	}

	recs := wizard.Recommend(answers)
	ok(c, http.StatusOK, WizardResponse{Recommendations: recs})
}
