package batch

import (
	"context"
	"errors"
	"fmt"

	"Erosion/internal/calc/engine"
	"Erosion/internal/calc/schema"
)

// DefaultMaxRequests bounds the size of one batch.
const DefaultMaxRequests = 50

var ErrEmpty = errors.New("no requests")

type Input struct {
	Requests []schema.Request `json:"requests"`
}

type Result struct {
	Count     int               `json:"count"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Responses []schema.Response `json:"responses"`
}

// Calculate runs the requests in order. A failed request does not stop the batch.
func Calculate(ctx context.Context, eng *engine.Engine, in Input, limit int) (Result, error) {
	if len(in.Requests) == 0 {
		return Result{}, ErrEmpty
	}
	if limit > 0 && len(in.Requests) > limit {
		return Result{}, fmt.Errorf("batch of %d requests exceeds the limit of %d", len(in.Requests), limit)
	}
	out := Result{Count: len(in.Requests), Responses: make([]schema.Response, 0, len(in.Requests))}
	for _, req := range in.Requests {
		resp := eng.Run(ctx, req, nil)
		if resp.CalculationResponse.Status.Success {
			out.Succeeded++
		} else {
			out.Failed++
		}
		out.Responses = append(out.Responses, resp)
	}
	return out, nil
}
