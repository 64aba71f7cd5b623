package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/taskrank/internal/domain/model"
)

// Request decoding errors. Their text is returned to the caller.
var (
	errInvalidJSON   = errors.New("invalid json")
	errBodyNotObject = errors.New("request body must be a JSON object")
	errMissingTasks  = errors.New("missing 'tasks' array in request body")
	errTasksNotArray = errors.New("'tasks' must be an array")
	errStrategyType  = errors.New("'strategy' must be a string")
	errBodyTooLarge  = errors.New("request body too large")
	errTooManyTasks  = errors.New("too many tasks")
)

// rankRequest is the decoded body shared by analyze and suggest.
type rankRequest struct {
	Tasks    []model.Task
	Strategy string
	TopN     int
}

// decodeRankRequest reads and validates a ranking request body. requireTasks
// makes an absent or null "tasks" key an error instead of an empty list.
func decodeRankRequest(op string, w http.ResponseWriter, r *http.Request, lim limits, requireTasks bool) (rankRequest, error) {
	body, err := readBody(w, r, lim.maxBodyBytes)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return rankRequest{}, WrapKind(op, ErrTooLarge, err)
		}
		return rankRequest{}, WrapKind(op, ErrBadRequest, err)
	}

	fields, err := decodeObject(body)
	if err != nil {
		return rankRequest{}, WrapKind(op, ErrBadRequest, err)
	}

	var req rankRequest
	tasks, err := decodeTasks(fields["tasks"], requireTasks, lim.maxTasks)
	if err != nil {
		if errors.Is(err, errTooManyTasks) {
			return rankRequest{}, WrapKind(op, ErrTooLarge, err)
		}
		return rankRequest{}, WrapKind(op, ErrBadRequest, err)
	}
	req.Tasks = tasks

	strategy := model.NewValue(fields["strategy"])
	if strategy.Present() && !strategy.IsNull() {
		name, ok := strategy.String()
		if !ok {
			return rankRequest{}, WrapKind(op, ErrBadRequest, errStrategyType)
		}
		req.Strategy = name
	}

	if n, ok := model.NewValue(fields["top_n"]).Int(); ok && n > 0 {
		req.TopN = n
	}
	return req, nil
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// decodeObject parses body as a JSON object. An empty body is an empty
// object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	if body[0] != '{' {
		return nil, errBodyNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errInvalidJSON
	}
	return fields, nil
}

func decodeTasks(raw json.RawMessage, required bool, maxTasks int) ([]model.Task, error) {
	v := model.NewValue(raw)
	if !v.Present() || v.IsNull() {
		if required {
			return nil, errMissingTasks
		}
		return []model.Task{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, errTasksNotArray
	}
	if maxTasks > 0 && len(elems) > maxTasks {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", errTooManyTasks, len(elems), maxTasks)
	}

	tasks := make([]model.Task, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			return nil, fmt.Errorf("tasks[%d] must be a JSON object", i)
		}
		if err := json.Unmarshal(elem, &tasks[i]); err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
	}
	return tasks, nil
}
