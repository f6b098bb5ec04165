package intake

import (
	"context"
	"errors"

	"confirm.durgadawaghar.com/internal/parser"
)

// BatchItem is the outcome of one message of a multi-message export
type BatchItem struct {
	Message string
	Result  Result
	Err     error // validation error for this message only
}

// Preview is a parsed but unrecorded message
type Preview struct {
	Message string
	Hash    string
	Report  parser.Report
}

// Preview splits an export and parses every message without recording
// anything. Preview of an invalid export returns the validation error.
func (s *Service) Preview(raw string) ([]Preview, error) {
	text, err := s.Normalize(raw)
	if err != nil {
		return nil, err
	}

	messages := parser.SplitMessages(text)
	previews := make([]Preview, len(messages))
	for i, msg := range messages {
		report, hash, _ := s.inspect(msg)
		previews[i] = Preview{Message: msg, Hash: hash, Report: report}
	}
	return previews, nil
}

// SubmitBatch splits an export and submits every message. A message that
// fails validation is reported on its item; a storage failure stops the
// batch and is returned with the items processed so far.
func (s *Service) SubmitBatch(ctx context.Context, raw, source string) ([]BatchItem, error) {
	text, err := s.Normalize(raw)
	if err != nil {
		return nil, err
	}

	messages := parser.SplitMessages(text)
	items := make([]BatchItem, 0, len(messages))
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return items, err
		}

		result, err := s.Submit(ctx, msg, source)
		item := BatchItem{Message: msg, Result: result}
		if err != nil {
			if !isValidation(err) {
				return items, err
			}
			item.Err = err
		}
		items = append(items, item)
	}
	return items, nil
}

func isValidation(err error) bool {
	return errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrInvalidEncoding) ||
		errors.Is(err, ErrMessageTooLarge)
}
