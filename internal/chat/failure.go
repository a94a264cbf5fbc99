package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
)

// Failure renders err as an actionable message with the same details under data["error"].
func Failure(prefix string, err error) Result {
	text, detail := describe(err)
	if prefix != "" {
		text = prefix + ": " + text
	}
	return Result{
		Success: false,
		Text:    text,
		Data:    map[string]any{"error": detail},
	}
}

// Convert turns taxonomy errors into a failure result and passes anything else through.
func Convert(prefix string, err error) (Result, error) {
	if apperr.IsDomain(err) {
		return Failure(prefix, err), nil
	}
	return Result{}, err
}

func describe(err error) (string, map[string]any) {
	var (
		validation *apperr.ValidationError
		notFound   *apperr.NotFoundError
		ambiguous  *apperr.AmbiguousReferenceError
		conflict   *apperr.ConflictError
		stock      *apperr.InsufficientStockError
		lines      *apperr.LineErrors
		collab     *apperr.CollaboratorFailure
	)

	switch {
	case errors.As(err, &lines):
		msgs := make([]string, 0, len(lines.Errors))
		details := make([]map[string]any, 0, len(lines.Errors))
		for _, e := range lines.Errors {
			t, d := describe(e)
			msgs = append(msgs, "- "+t)
			details = append(details, d)
		}
		return "nothing was saved.\n" + strings.Join(msgs, "\n"),
			map[string]any{"type": "line_errors", "errors": details}

	case errors.As(err, &validation):
		text := validation.Message
		if validation.Field != "" {
			text = fmt.Sprintf("missing or invalid %s. %s", validation.Field, validation.Message)
		}
		return text, map[string]any{"type": "validation", "field": validation.Field, "message": validation.Message}

	case errors.As(err, &notFound):
		return fmt.Sprintf("no %s matches %q", notFound.Entity, notFound.Ref),
			map[string]any{"type": "not_found", "entity": notFound.Entity, "ref": notFound.Ref}

	case errors.As(err, &ambiguous):
		candidates := make([]map[string]any, len(ambiguous.Candidates))
		for i, c := range ambiguous.Candidates {
			candidates[i] = map[string]any{"id": c.ID, "name": c.Name}
		}
		return ambiguous.Error() + ". Please repeat the command with the product id, e.g. \"product id 4\"",
			map[string]any{"type": "ambiguous", "entity": ambiguous.Entity, "ref": ambiguous.Ref, "candidates": candidates}

	case errors.As(err, &conflict):
		text := conflict.Error()
		if conflict.ExistingName != "" {
			text = fmt.Sprintf("duplicate %s %s %q: it matches existing %s %q (id %d)",
				conflict.Entity, conflict.Field, conflict.Value, conflict.Entity, conflict.ExistingName, conflict.ExistingID)
		}
		return text, map[string]any{
			"type": "conflict", "entity": conflict.Entity, "field": conflict.Field, "value": conflict.Value,
			"existing_id": conflict.ExistingID, "existing_name": conflict.ExistingName,
		}

	case errors.As(err, &stock):
		return stock.Error(), map[string]any{
			"type": "insufficient_stock", "product_id": stock.ProductID, "product": stock.Product,
			"available": stock.Available, "requested": stock.Requested,
		}

	case errors.As(err, &collab):
		return fmt.Sprintf("the %s service is not responding, please try again in a moment", collab.Collaborator),
			map[string]any{"type": "collaborator", "collaborator": collab.Collaborator}
	}

	return "something went wrong while processing your request, please try again",
		map[string]any{"type": "internal"}
}
