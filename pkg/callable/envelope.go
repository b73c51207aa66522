package callable

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/guidr-app/guidr/backend/internal/model/chat"
	"github.com/guidr-app/guidr/backend/pkg/utils"
)

// Names of the callables served by the backend.
const (
	CoachChat       = "coachChat"
	SaveUserContext = "saveUserContext"
)

// Path returns the HTTP path a callable is served on.
func Path(name string) string {
	return "/api/callable/" + name
}

// Request wraps callable input.
type Request[T any] struct {
	Data T `json:"data"`
}

// Response wraps callable output.
type Response[T any] struct {
	Result T      `json:"result"`
	Error  *Error `json:"error,omitempty"`
}

// Decode reads a callable request body into dst.
func Decode[T any](r *http.Request, dst *T) error {
	var req Request[T]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Errorf(InvalidArgument, "invalid request body: %v", err)
	}
	*dst = req.Data
	return nil
}

// RespondResult writes a successful callable response.
func RespondResult[T any](w http.ResponseWriter, result T) {
	utils.RespondJSON(w, http.StatusOK, Response[T]{Result: result})
}

// RespondError writes err in the callable error envelope. Untyped errors are
// reported as INTERNAL without leaking their text.
func RespondError(w http.ResponseWriter, err error) {
	var ce *Error
	if !errors.As(err, &ce) {
		ce = &Error{Kind: Internal, Message: "internal error"}
	}
	utils.RespondJSON(w, ce.Kind.HTTPStatus(), map[string]*Error{"error": ce})
}

// CoachChatRequest is the coachChat input. RecipeID is the only accepted
// recipe field; LegacyGuidrID is decoded so it can be rejected explicitly.
type CoachChatRequest struct {
	RecipeID       string      `json:"recipeId"`
	LegacyGuidrID  string      `json:"guidrId,omitempty"`
	MessageHistory []chat.Wire `json:"messageHistory"`
	IsNewSession   bool        `json:"isNewSession"`
}

// CoachChatResult is the coachChat output.
type CoachChatResult struct {
	Response string `json:"response"`
}

// SaveUserContextRequest is the saveUserContext input.
type SaveUserContextRequest struct {
	QuarterlyGoal   string `json:"quarterlyGoal"`
	WeeklySentiment string `json:"weeklySentiment"`
}

// SaveUserContextResult is the saveUserContext output.
type SaveUserContextResult struct {
	Success bool `json:"success"`
}

// String is used in log lines.
func (r CoachChatRequest) String() string {
	return fmt.Sprintf("coachChat(recipe=%s, newSession=%t)", r.RecipeID, r.IsNewSession)
}
